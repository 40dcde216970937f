package account

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

var ErrNoAccounts = errors.New("no accounts found in dump")

// ParseDump decodes accounts saved by a browser installation. It accepts the
// bare accounts array, or a storage dump object whose accounts key holds the
// array either directly or as a JSON-encoded string.
func ParseDump(data []byte) ([]model.UserAccount, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoAccounts
	}

	if data[0] == '[' {
		return decodeAccounts(data)
	}

	var dump map[string]json.RawMessage
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	raw, ok := dump[accountsKey]
	if !ok {
		return nil, ErrNoAccounts
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	return decodeAccounts(raw)
}

func decodeAccounts(data []byte) ([]model.UserAccount, error) {
	var accounts []model.UserAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	for i := range accounts {
		accounts[i].Progress = accounts[i].Progress.Clone()
	}
	return accounts, nil
}
