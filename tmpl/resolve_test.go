package tmpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Base struct {
	ID int
}

type account struct {
	*Owner
	Base

	FullName string `sout:"full_name"`
	Hidden   string `sout:"-"`
	Email    string `sout:"mail,omitempty"`
	secret   string
	balance  int
}

type Owner struct {
	Login string
}

func (o Owner) Handle() string { return "@" + o.Login }

func (a account) Balance() int { return a.balance }

func (a account) Secret() (string, error) {
	if a.secret == "" {
		return "", errors.New("no secret")
	}

	return a.secret, nil
}

func (a *account) Reset() int { return 0 }

func (a account) Scale(n int) int { return a.balance * n }

type key string

type record map[string]any

func (r record) Field(name string) (any, bool) {
	v, ok := r["$"+name]

	return v, ok
}

func TestResolve_Found(t *testing.T) {
	acct := account{
		Owner:    &Owner{Login: "ada"},
		Base:     Base{ID: 7},
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		secret:   "s3",
		balance:  42,
	}

	tests := []struct {
		name  string
		model any
		key   string
		want  any
	}{
		{"empty name", acct, "", acct},
		{"map", map[string]any{"a": 1}, "a", 1},
		{"typed map", map[string]int{"a": 2}, "a", 2},
		{"named key map", map[key]string{"k": "v"}, "k", "v"},
		{"map value nil", map[string]any{"a": nil}, "a", nil},
		{"tag", acct, "full_name", "Ada Lovelace"},
		{"tag with options", acct, "mail", "ada@example.com"},
		{"exact field", acct, "FullName", "Ada Lovelace"},
		{"folded field", acct, "fullname", "Ada Lovelace"},
		{"promoted field", acct, "ID", 7},
		{"promoted through pointer", acct, "login", "ada"},
		{"embedded struct", acct, "Base", Base{ID: 7}},
		{"pointer model", &acct, "FullName", "Ada Lovelace"},
		{"method", acct, "Balance", 42},
		{"promoted method", acct, "handle", "@ada"},
		{"folded method", acct, "balance", 42},
		{"method with error", acct, "Secret", "s3"},
		{"pointer method", &acct, "Reset", 0},
		{"fields adapter", record{"$a": 1, "a": 2}, "a", 1},
		{"dotted", map[string]any{"a": map[string]any{"b": acct}}, "a.b.ID", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.model, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model any
		key   string
		err   *Error
	}{
		{"nil model", nil, "a", ErrNullModel},
		{"nil pointer", (*account)(nil), "FullName", ErrNullModel},
		{"nil embedded pointer", account{}, "Login", ErrNullModel},
		{"method through nil embedded pointer", account{FullName: "n"}, "Handle", ErrCall},
		{"nil in path", map[string]any{"a": nil}, "a.b", ErrNullModel},
		{"missing key", map[string]int{}, "a", ErrNameNotFound},
		{"missing field", account{}, "nope", ErrNameNotFound},
		{"ignored tag", account{}, "Hidden", ErrNameNotFound},
		{"unexported field falls back to method", account{}, "secret", ErrCall},
		{"method with args", account{}, "Scale", ErrNameNotFound},
		{"pointer method on value", account{}, "Reset", ErrNameNotFound},
		{"fields adapter miss", record{"a": 1}, "a", ErrNameNotFound},
		{"int keys", map[int]string{1: "a"}, "1", ErrUnsupportedModel},
		{"scalar", 3.5, "x", ErrUnsupportedModel},
		{"slice", []int{1}, "0", ErrUnsupportedModel},
		{"failed segment", map[string]any{"a": map[string]any{}}, "a.b.c", ErrNameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.model, tt.key)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestResolve_MethodErrorIsWrapped(t *testing.T) {
	_, err := Resolve(account{}, "Secret")
	require.ErrorIs(t, err, ErrCall)
	assert.Contains(t, err.Error(), "no secret")
}

func TestResolve_Suggestions(t *testing.T) {
	model := map[string]any{"name": 1, "count": 2, "title": 3}

	_, err := Resolve(model, "nme")
	require.ErrorIs(t, err, ErrNameNotFound)
	assert.Contains(t, err.Error(), `"nme" (did you mean name?)`)

	_, err = Resolve(model, "zzz")
	require.ErrorIs(t, err, ErrNameNotFound)
	assert.Equal(t, `name not found: "zzz"`, err.Error())
}

func TestResolve_SuggestionsIncludeMethods(t *testing.T) {
	_, err := Resolve(account{}, "Blance")
	require.ErrorIs(t, err, ErrNameNotFound)
	assert.Contains(t, err.Error(), "Balance")
}
