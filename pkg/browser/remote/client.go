// Package remote drives a browser hosted by a browser-as-a-service backend.
package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	startEndpoint   = "/api/async/start"
	messageEndpoint = "/api/async/message"
)

type client struct {
	url     string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

func newClient(url, apiKey string, timeout time.Duration) *client {
	return &client{
		url:     strings.TrimSuffix(url, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{},
	}
}

func (c *client) post(ctx context.Context, endpoint, timeout string, headers map[string]string, body any) (*http.Response, error) {
	reqTimeout := c.timeout
	if d, err := time.ParseDuration(timeout); err == nil {
		reqTimeout = d
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to init request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpClient := *c.http
	// the start stream stays open for the whole session
	if endpoint != startEndpoint {
		httpClient.Timeout = reqTimeout
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, errors.Errorf("failed to call %s: status code %d: %s", endpoint, resp.StatusCode, readBytes(resp.Body))
	}
	return resp, nil
}

// start opens a session. The returned stream must be closed to release it.
func (c *client) start(ctx context.Context, req startRequest) (*messageOut, io.Closer, error) {
	resp, err := c.post(ctx, startEndpoint, req.Browser.Timeout, map[string]string{
		"Accept": "text/event-stream",
	}, req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to start session")
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil && line == "" {
		resp.Body.Close()
		return nil, nil, errors.Wrapf(err, "failed to read session start")
	}
	var out messageOut
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &out); err != nil {
		resp.Body.Close()
		return nil, nil, errors.Wrapf(err, "failed to unmarshal session start: %s", line)
	}
	if err := replyError(out); err != nil {
		resp.Body.Close()
		return nil, nil, err
	}
	if out.SessionID == "" {
		resp.Body.Close()
		return nil, nil, errors.New("backend did not return a session id")
	}
	return &out, resp.Body, nil
}

// message sends one program statement and returns the reply with the same request id.
func (c *client) message(ctx context.Context, msg messageIn) (*messageOut, error) {
	msg.RequestID = lo.RandomString(10, lo.LowerCaseLettersCharset)
	resp, err := c.post(ctx, messageEndpoint, msg.Timeout, nil, msg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	replies, err := decodeReplies(readBytes(resp.Body))
	if err != nil {
		return nil, err
	}
	reply, found := lo.Find(replies, func(out messageOut) bool {
		return out.RequestID == msg.RequestID
	})
	if !found {
		return nil, errors.Errorf("no reply for request %q", msg.RequestID)
	}
	if err := replyError(reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// decodeReplies reads newline separated JSON replies.
func decodeReplies(body []byte) ([]messageOut, error) {
	var replies []messageOut
	dec := json.NewDecoder(bytes.NewReader(body))
	for dec.More() {
		var out messageOut
		if err := dec.Decode(&out); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal reply: %s", body)
		}
		replies = append(replies, out)
	}
	return replies, nil
}

func replyError(out messageOut) error {
	if metaErr := lo.FromPtr(out.Meta.Error); metaErr != "" {
		return errors.Errorf("backend returned error: %s, request uid: %q", metaErr, out.Meta.RequestUID)
	}
	if out.Error != "" {
		return errors.Errorf("%s", out.Error)
	}
	return nil
}

func readBytes(stream io.Reader) []byte {
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(stream)
	return buf.Bytes()
}
