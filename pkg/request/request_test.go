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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

type testResp struct {
	Message string `json:"message"`
	Echo    string `json:"echo,omitempty"`
}

func TestGETWithResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	var out testResp
	resp, err := NewRequest(srv.URL, fasthttp.MethodGet).
		WithResult(&out).
		Do()
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
	if out.Message != "ok" {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestPOSTBodyJSONAndResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		respBody, _ := sonic.Marshal(testResp{
			Message: "ok",
			Echo:    string(body),
		})
		_, _ = w.Write(respBody)
	}))
	defer srv.Close()

	type payload struct {
		Name string `json:"name"`
	}

	var out testResp
	resp, err := NewRequest(srv.URL, fasthttp.MethodPost).
		WithBodyJSON(payload{Name: "test"}).
		WithResult(&out).
		Do()
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
	if out.Message != "ok" || out.Echo != `{"name":"test"}` {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestMethodValidation(t *testing.T) {
	_, err := NewRequest("http://example.com", "").Do()
	if err == nil {
		t.Fatalf("expected method required error")
	}

	_, err = NewRequest("http://example.com", "BAD").Do()
	if err == nil {
		t.Fatalf("expected invalid method error")
	}
}

func TestQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("a") != "1" || q.Get("b") != "2" || q.Get("x") != "y" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewRequest(srv.URL+"?x=y", fasthttp.MethodGet).
		WithQueryParams(map[string]string{"a": "1", "b": "2"}).
		Do()
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
}

func TestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Tenant-Id") != "acme" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewRequest(srv.URL, fasthttp.MethodGet).
		WithHeader("X-Tenant-Id", "acme").
		WithHeaders(map[string]string{"Authorization": "Bearer tok"}).
		Do()
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
}

func TestBodyBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "raw" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := NewRequest(srv.URL, fasthttp.MethodPost).
		WithBodyBytes([]byte("raw")).
		Do()
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewRequest(srv.URL, fasthttp.MethodGet).
		WithTimeout(50 * time.Millisecond).
		Do()
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}
