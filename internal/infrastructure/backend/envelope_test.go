package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/learning-portal/internal/core/domain"
)

func TestCoerceList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, []string{"a", "b"}},
		{"enveloped array", `{"data":[{"id":"a"}]}`, []string{"a"}},
		{"empty array", `[]`, []string{}},
		{"null", `null`, []string{}},
		{"empty object", `{}`, []string{}},
		{"data is object", `{"data":{"id":"a"}}`, []string{}},
		{"data is null", `{"data":null}`, []string{}},
		{"scalar", `"oops"`, []string{}},
		{"empty input", ``, []string{}},
		{"wrong element type", `[1,2]`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceList[domain.Course](json.RawMessage(tt.raw))

			require.NotNil(t, got)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDecodeOne(t *testing.T) {
	t.Run("bare entity", func(t *testing.T) {
		res := decodeOne[domain.Course](domain.Ok(json.RawMessage(`{"id":"c1","title":"Go"}`)))
		c, ok := res.Data()
		require.True(t, ok)
		assert.Equal(t, "Go", c.Title)
	})

	t.Run("data envelope", func(t *testing.T) {
		res := decodeOne[domain.Course](domain.Ok(json.RawMessage(`{"data":{"id":"c1"}}`)))
		c, ok := res.Data()
		require.True(t, ok)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("user envelope", func(t *testing.T) {
		res := decodeOne[domain.User](domain.Ok(json.RawMessage(`{"user":{"id":"u1","role":"ADMIN"}}`)))
		u, ok := res.Data()
		require.True(t, ok)
		assert.Equal(t, domain.RoleAdmin, u.Role)
	})

	t.Run("null body", func(t *testing.T) {
		res := decodeOne[domain.Course](domain.Ok(json.RawMessage(`null`)))
		assert.Equal(t, malformedResponseMessage, res.Err())
	})

	t.Run("failure passes through", func(t *testing.T) {
		res := decodeOne[domain.Course](domain.Fail[json.RawMessage]("Course not found"))
		assert.Equal(t, "Course not found", res.Err())
	})
}

func TestDecodeAuth(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"canonical", `{"token":"t","user":{"id":"u1","role":"STUDENT"}}`, ""},
		{"user under data", `{"token":"t","data":{"id":"u1","role":"STUDENT"}}`, ""},
		{"whole payload enveloped", `{"data":{"token":"t","user":{"id":"u1","role":"STUDENT"}}}`, ""},
		{"missing token", `{"user":{"id":"u1"}}`, malformedResponseMessage},
		{"missing user", `{"token":"t"}`, malformedResponseMessage},
		{"user without id", `{"token":"t","user":{"name":"x"}}`, malformedResponseMessage},
		{"not an object", `[]`, malformedResponseMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decodeAuth(domain.Ok(json.RawMessage(tt.raw)))

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, res.Err())
				return
			}
			auth, ok := res.Data()
			require.True(t, ok)
			assert.Equal(t, "t", auth.Token)
			assert.Equal(t, "u1", auth.User.ID)
		})
	}
}
