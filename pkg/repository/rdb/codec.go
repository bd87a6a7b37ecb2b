package rdb

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode record")
	}
	return string(raw), nil
}

func decode(data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return goerr.Wrap(err, "failed to decode record")
	}
	return nil
}
