package operation

import (
	"encoding/json"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/models"
)

const (
	msgInvalidResponse = "Invalid response from server"
	msgNetworkNotOK    = "Network response was not ok"
)

// responseBody is the union of every JSON shape the admin endpoints return.
type responseBody struct {
	models.Patch
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
	Error    string `json:"error"`
}

// interpretRegenerate maps a regenerate response to patch, redirect or failure.
// A success flag without any patch field is not a patch.
func interpretRegenerate(resp *client.Response) models.OperationResult {
	if !resp.OK() {
		return statusFailure(resp)
	}
	var body responseBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}
	}
	switch {
	case body.Success && !body.Patch.Empty():
		return body.Patch
	case body.Redirect != "":
		return models.Redirect{URL: body.Redirect}
	case body.Error != "":
		return models.Failure{Kind: models.ServerReportedFailure, Message: body.Error}
	default:
		return models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}
	}
}

// interpretSubmit maps a submit response to redirect or failure. Submit has
// no in-place success.
func interpretSubmit(resp *client.Response) models.OperationResult {
	if !resp.OK() {
		return statusFailure(resp)
	}
	var body responseBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}
	}
	switch {
	case body.Redirect != "":
		return models.Redirect{URL: body.Redirect}
	case body.Error != "":
		return models.Failure{Kind: models.ServerReportedFailure, Message: body.Error}
	default:
		return models.Failure{Kind: models.ProtocolViolation, Message: msgInvalidResponse}
	}
}

// statusFailure reads the error field of a non-2xx body, falling back to a
// generic message when there is none.
func statusFailure(resp *client.Response) models.Failure {
	var body responseBody
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Error != "" {
		return models.Failure{Kind: models.ServerReportedFailure, Message: body.Error}
	}
	return models.Failure{Kind: models.TransportFailure, Message: msgNetworkNotOK}
}
