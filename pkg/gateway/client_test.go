package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dewei/MarketDiary/pkg/model"
)

func testEntry() model.Entry {
	return model.Entry{
		ID:      "e1",
		OwnerID: "u1",
		Date:    model.NewDate(2024, 3, 15),
		Stocks: []model.Stock{
			{Name: "Acme", Symbol: "ACM", Kind: model.StockGlobal, Price: 110, PriorDayPrice: 100, PercentChange: 10},
		},
	}
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(srv.URL, 5*time.Second, func() string { return "test-token" })
	return client, srv
}

// 每个请求都要在 x-auth-token 头上附带凭证
func TestClientAttachesToken(t *testing.T) {
	var gotToken string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-auth-token")
		json.NewEncoder(w).Encode([]model.Entry{})
	})
	defer srv.Close()

	if _, err := client.ListEntries(context.Background()); err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if gotToken != "test-token" {
		t.Errorf("x-auth-token = %q, want test-token", gotToken)
	}
}

func TestListEntries(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/entries" {
			t.Errorf("请求 = %s %s, want GET /api/entries", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]model.Entry{testEntry()})
	})
	defer srv.Close()

	entries, err := client.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Errorf("entries = %v", entries)
	}
}

// 创建接口兼容裸日记和 {entry: {...}} 包装两种响应形态
func TestCreateEntryResponseShapes(t *testing.T) {
	want := testEntry()

	tests := []struct {
		name string
		body func() interface{}
	}{
		{"包装形态", func() interface{} { return map[string]interface{}{"entry": want} }},
		{"裸日记形态", func() interface{} { return want }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(tt.body())
			})
			defer srv.Close()

			entry, err := client.CreateEntry(context.Background(), want.Draft())
			if err != nil {
				t.Fatalf("CreateEntry() error = %v", err)
			}
			if entry.ID != want.ID || len(entry.Stocks) != 1 {
				t.Errorf("两种响应形态应当得到同一条日记, got %v", entry)
			}
		})
	}
}

func TestCreateEntryInvalidShape(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	})
	defer srv.Close()

	_, err := client.CreateEntry(context.Background(), model.EntryDraft{})
	var shapeErr *ResponseShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("err = %v, want ResponseShapeError", err)
	}
}

// 创建请求只携带客户端可以决定的字段
func TestCreateEntryStripsClientFields(t *testing.T) {
	var payload map[string]json.RawMessage
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(testEntry())
	})
	defer srv.Close()

	entry := testEntry()
	if _, err := client.CreateEntry(context.Background(), entry.Draft()); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	for _, field := range []string{"id", "ownerId", "createdAt", "updatedAt"} {
		if _, ok := payload[field]; ok {
			t.Errorf("请求体不应包含 %s 字段", field)
		}
	}
	for _, field := range []string{"date", "stocks", "localHeadlines", "globalHeadlines"} {
		if _, ok := payload[field]; !ok {
			t.Errorf("请求体缺少 %s 字段", field)
		}
	}
}

// 错误消息提取顺序：message 优先于 msg
func TestServerErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message字段", `{"message":"Invalid date","msg":"other"}`, "Invalid date"},
		{"msg字段", `{"msg":"Validation failed"}`, "Validation failed"},
		{"无消息字段", `{}`, http.StatusText(http.StatusBadRequest)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			})
			defer srv.Close()

			_, err := client.CreateEntry(context.Background(), model.EntryDraft{})
			var serverErr *ServerError
			if !errors.As(err, &serverErr) {
				t.Fatalf("err = %v, want ServerError", err)
			}
			if serverErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", serverErr.Message, tt.want)
			}
		})
	}
}

func TestUpdateEntryEmptyBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	_, err := client.UpdateEntry(context.Background(), "e1", model.EntryDraft{})
	var emptyErr *EmptyResponseError
	if !errors.As(err, &emptyErr) {
		t.Errorf("err = %v, want EmptyResponseError", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	if err := client.DeleteEntry(context.Background(), "e1"); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if gotPath != "DELETE /api/entries/e1" {
		t.Errorf("请求 = %q", gotPath)
	}
}

// 服务器不可达时返回网络错误
func TestNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, nil)

	_, err := client.ListEntries(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("err = %v, want NetworkError", err)
	}
}
