// Copyright 2026 Roleflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package request

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds a request when no explicit timeout is set.
const DefaultTimeout = 30 * time.Second

// Request is a single JSON-oriented HTTP request against a collaborator
// service.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	BodyRaw []byte
	BodyObj any
	Timeout time.Duration
	Result  any
}

// NewRequest creates a new request with the given method and URL.
func NewRequest(url, method string) *Request {
	return &Request{
		Method: method,
		URL:    url,
	}
}

// WithHeader sets a single header.
func (r *Request) WithHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[key] = value
	return r
}

// WithHeaders merges the given headers into the request.
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for key, value := range headers {
		r.WithHeader(key, value)
	}
	return r
}

// WithQueryParams appends query parameters to the request URL.
func (r *Request) WithQueryParams(params map[string]string) *Request {
	r.Query = params
	return r
}

// WithResult decodes the response body into result when present.
func (r *Request) WithResult(result any) *Request {
	r.Result = result
	return r
}

// WithBodyBytes sets raw body bytes.
func (r *Request) WithBodyBytes(body []byte) *Request {
	r.BodyRaw = body
	return r
}

// WithBodyJSON sets a JSON body and default Content-Type.
func (r *Request) WithBodyJSON(body any) *Request {
	r.BodyObj = body
	return r.WithHeader("Content-Type", "application/json")
}

// WithTimeout bounds the whole round trip.
func (r *Request) WithTimeout(timeout time.Duration) *Request {
	r.Timeout = timeout
	return r
}

// Do sends the request using the configured method.
func (r *Request) Do() (*fasthttp.Response, error) {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		return nil, errors.New("request method is required")
	}
	if !isValidMethod(method) {
		return nil, fmt.Errorf("invalid request method: %s", method)
	}
	return r.do(method)
}

func (r *Request) do(method string) (*fasthttp.Response, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := &fasthttp.Response{}
	req.Header.SetMethod(method)
	req.SetRequestURI(r.withQuery())

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	switch {
	case len(r.BodyRaw) > 0:
		req.SetBody(r.BodyRaw)
	case r.BodyObj != nil:
		bodyBytes, err := sonic.Marshal(r.BodyObj)
		if err != nil {
			return resp, err
		}
		req.SetBody(bodyBytes)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &fasthttp.Client{}
	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return resp, err
	}

	if r.Result != nil && len(resp.Body()) > 0 {
		if err := sonic.Unmarshal(resp.Body(), r.Result); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (r *Request) withQuery() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	values := parsed.Query()
	for key, value := range r.Query {
		values.Set(key, value)
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}

// isValidMethod validates supported HTTP methods.
func isValidMethod(method string) bool {
	switch method {
	case fasthttp.MethodGet,
		fasthttp.MethodPost,
		fasthttp.MethodPut,
		fasthttp.MethodDelete,
		fasthttp.MethodPatch,
		fasthttp.MethodHead,
		fasthttp.MethodOptions:
		return true
	default:
		return false
	}
}
