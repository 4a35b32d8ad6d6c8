package redis

import (
	"encoding/json"

	"github.com/mcoot/playerledger/internal/model"
)

func mustJSON(acc *model.Account) string {
	data, err := json.Marshal(acc)
	if err != nil {
		panic(err)
	}
	return string(data)
}
