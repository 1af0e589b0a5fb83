package state

import (
	"encoding/json"

	"github.com/eth2030/coreintp/word"
)

// Account is a record of external state for a single address.
type Account struct {
	Address Address
	Balance word.U256
	Nonce   uint64
	Code    []byte
	Storage Storage
}

// NewAccount returns an empty account at the given address: zero
// balance, zero nonce, no code, no storage.
func NewAccount(addr Address) Account {
	return Account{
		Address: addr,
		Storage: make(Storage),
	}
}

// MarshalJSON encodes the account in its wire layout (see SPEC_FULL.md
// §C): address/balance/nonce/code/storage, with code as a JSON array of
// byte-valued integers (not a hex or base64 string).
func (a Account) MarshalJSON() ([]byte, error) {
	code := a.Code
	if code == nil {
		code = []byte{}
	}
	storage := a.Storage
	if storage == nil {
		storage = make(Storage)
	}
	return json.Marshal(codeAsIntArray{
		Address: a.Address,
		Balance: a.Balance,
		Nonce:   a.Nonce,
		Code:    code,
		Storage: storage,
	})
}

// UnmarshalJSON decodes the account per the wire schema.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw codeAsIntArray
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Address = raw.Address
	a.Balance = raw.Balance
	a.Nonce = raw.Nonce
	a.Code = []byte(raw.Code)
	if raw.Storage == nil {
		raw.Storage = make(Storage)
	}
	a.Storage = raw.Storage
	return nil
}

// codeAsIntArray gives Code (a []byte) the JSON shape of an array of
// small integers rather than encoding/json's default base64-string
// encoding for []byte.
type codeAsIntArray struct {
	Address Address   `json:"address"`
	Balance word.U256 `json:"balance"`
	Nonce   uint64    `json:"nonce"`
	Code    byteInts  `json:"code"`
	Storage Storage   `json:"storage"`
}

type byteInts []byte

func (b byteInts) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func (b *byteInts) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}
