package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

func UnmarshalJson[T any](data []byte) (T, error) {
	var result T
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return *new(T), errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}

func MarshalJson(v any) ([]byte, error) {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return nil, errors.WithMessage(err, "marshal json")
	}
	return data, nil
}
