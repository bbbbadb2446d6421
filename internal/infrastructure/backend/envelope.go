package backend

import (
	"bytes"
	"encoding/json"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

// CoerceList normalizes a list payload. The backend answers list endpoints
// either with a bare array or with {"data": [...]}; anything else, including
// null and {}, yields an empty, non-nil list.
func CoerceList[T any](raw json.RawMessage) []T {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}
	}

	switch trimmed[0] {
	case '[':
		return decodeArray[T](trimmed)
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return []T{}
		}
		inner := bytes.TrimSpace(env.Data)
		if len(inner) > 0 && inner[0] == '[' {
			return decodeArray[T](inner)
		}
	}
	return []T{}
}

func decodeArray[T any](raw []byte) []T {
	list := []T{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return []T{}
	}
	return list
}

// unwrapOne strips a {"data": {...}} or {"user": {...}} envelope around a
// single entity. An object that carries its own "id" is the entity itself.
func unwrapOne(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return trimmed
	}
	if _, ok := probe["id"]; ok {
		return trimmed
	}
	for _, key := range []string{"data", "user"} {
		inner := bytes.TrimSpace(probe[key])
		if len(inner) > 0 && inner[0] == '{' {
			return inner
		}
	}
	return trimmed
}

func decodeList[T any](res domain.Result[json.RawMessage]) domain.Result[[]T] {
	raw, ok := res.Data()
	if !ok {
		return domain.Fail[[]T](res.Err())
	}
	return domain.Ok(CoerceList[T](raw))
}

func decodeOne[T any](res domain.Result[json.RawMessage]) domain.Result[T] {
	raw, ok := res.Data()
	if !ok {
		return domain.Fail[T](res.Err())
	}
	raw = unwrapOne(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return domain.Fail[T](malformedResponseMessage)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Fail[T](malformedResponseMessage)
	}
	return domain.Ok(v)
}

// discard keeps only the success/failure of a call whose body is irrelevant.
func discard(res domain.Result[json.RawMessage]) domain.Result[struct{}] {
	if !res.OK() {
		return domain.Fail[struct{}](res.Err())
	}
	return domain.Ok(struct{}{})
}

// decodeAuth reads {token, user}. The user may also arrive under "data", and
// the whole payload may itself be wrapped in {"data": {...}}.
func decodeAuth(res domain.Result[json.RawMessage]) domain.Result[domain.AuthResult] {
	raw, ok := res.Data()
	if !ok {
		return domain.Fail[domain.AuthResult](res.Err())
	}

	type authBody struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
		Data  json.RawMessage `json:"data"`
	}
	var body authBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.Fail[domain.AuthResult](malformedResponseMessage)
	}
	if body.Token == "" && len(body.Data) > 0 {
		var inner authBody
		if err := json.Unmarshal(body.Data, &inner); err == nil && inner.Token != "" {
			body = inner
		}
	}
	if body.Token == "" {
		return domain.Fail[domain.AuthResult](malformedResponseMessage)
	}

	userRaw := body.User
	if len(bytes.TrimSpace(userRaw)) == 0 || string(bytes.TrimSpace(userRaw)) == "null" {
		userRaw = body.Data
	}
	var user domain.User
	if len(userRaw) == 0 || json.Unmarshal(userRaw, &user) != nil || user.ID == "" {
		return domain.Fail[domain.AuthResult](malformedResponseMessage)
	}
	return domain.Ok(domain.AuthResult{Token: body.Token, User: user})
}
