package remote

import (
	"github.com/simple-container-com/go-aws-lambda-sdk/pkg/service"
)

type startRequest struct {
	Browser        browserOpts `json:"browser"`
	UseRandomProxy *bool       `json:"useRandomProxy,omitempty"`
}

type browserOpts struct {
	Headful          bool   `json:"headful"`
	ReturnScreenshot *bool  `json:"returnScreenshot"`
	Timeout          string `json:"timeout"`
	Width            *int   `json:"width,omitempty"`
	Height           *int   `json:"height,omitempty"`
}

type messageIn struct {
	SessionID   string `json:"sessionID"`
	RequestID   string `json:"requestID"`
	Program     string `json:"program"`
	Timeout     string `json:"timeout"`
	StopSession *bool  `json:"stopSession,omitempty"`
}

type messageOut struct {
	Timestamp   string             `json:"timestamp"`
	SessionID   string             `json:"sessionID"`
	RequestID   string             `json:"requestID"`
	Meta        service.ResultMeta `json:"meta"`
	Error       string             `json:"error,omitempty"`
	Value       any                `json:"value,omitempty"`
	Screenshots map[string][]byte  `json:"screenshots,omitempty"`
	Log         []string           `json:"log,omitempty"`
}
