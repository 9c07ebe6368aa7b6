package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		want        string
	}{
		{"msg field", "application/json", `{"msg":"sin stock"}`, 400, "sin stock"},
		{"detail before message", "application/json; charset=utf-8", `{"message":"b","detail":"a"}`, 422, "a"},
		{"error field", "application/json", `{"error":"nope"}`, 400, "nope"},
		{"empty fields skipped", "application/json", `{"msg":"","detail":"x"}`, 400, "x"},
		{"detail list joined", "application/json", `{"detail":[{"msg":"campo requerido"},{"msg":"email inválido"}]}`, 422, "campo requerido, email inválido"},
		{"unknown object marshalled", "application/json", `{"code":7}`, 400, `{"code":7}`},
		{"broken json", "application/json", `{`, 500, "HTTP 500"},
		{"plain text trimmed", "text/plain", "  Bad Gateway \n", 502, "Bad Gateway"},
		{"empty body", "", "", 404, "HTTP 404"},
		{"json null", "application/json", `null`, 500, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(tt.contentType, []byte(tt.body), tt.status))
		})
	}
}
