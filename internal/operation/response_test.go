package operation

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/models"
)

func TestInterpretRegenerate(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   models.OperationResult
	}{
		{
			name:   "patch",
			status: http.StatusOK,
			body:   `{"success":true,"thumb_data":"data:image/png;base64,AA","prompt":"p"}`,
			want:   models.Patch{ThumbData: "data:image/png;base64,AA", Prompt: "p"},
		},
		{
			name:   "redirect",
			status: http.StatusOK,
			body:   `{"redirect":"/pages/42/"}`,
			want:   models.Redirect{URL: "/pages/42/"},
		},
		{
			name:   "success flag alone",
			status: http.StatusOK,
			body:   `{"success":true}`,
			want:   models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse},
		},
		{
			name:   "fields without success flag",
			status: http.StatusOK,
			body:   `{"title_en":"T"}`,
			want:   models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse},
		},
		{
			name:   "error on 2xx",
			status: http.StatusOK,
			body:   `{"success":false,"error":"generation failed"}`,
			want:   models.Failure{Kind: models.ServerReportedFailure, Message: "generation failed"},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html></html>`,
			want:   models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse},
		},
		{
			name:   "status with error",
			status: http.StatusForbidden,
			body:   `{"error":"CSRF verification failed"}`,
			want:   models.Failure{Kind: models.ServerReportedFailure, Message: "CSRF verification failed"},
		},
		{
			name:   "status without body",
			status: http.StatusInternalServerError,
			body:   ``,
			want:   models.Failure{Kind: models.TransportFailure, Message: msgNetworkNotOK},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := interpretRegenerate(&client.Response{StatusCode: tc.status, Body: []byte(tc.body)})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInterpretSubmit(t *testing.T) {
	assert.Equal(t,
		models.Redirect{URL: "/admin/confirm/"},
		interpretSubmit(&client.Response{StatusCode: http.StatusOK, Body: []byte(`{"redirect":"/admin/confirm/"}`)}))
	assert.Equal(t,
		models.Failure{Kind: models.ServerReportedFailure, Message: "quota exceeded"},
		interpretSubmit(&client.Response{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"quota exceeded"}`)}))
	assert.Equal(t,
		models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse},
		interpretSubmit(&client.Response{StatusCode: http.StatusOK, Body: []byte(`{"success":true,"title_en":"T"}`)}))
}
