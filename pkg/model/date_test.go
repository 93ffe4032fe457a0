package model

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T00:00:00Z", "2024-03-15"},
		{"2024-03-15T18:30:00+08:00", "2024-03-15"},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	if _, err := ParseDate("not-a-date"); err == nil {
		t.Errorf("ParseDate 应当拒绝非法输入")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	date := NewDate(2024, 3, 15)

	data, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2024-03-15"` {
		t.Errorf("Marshal() = %s, want \"2024-03-15\"", data)
	}

	var decoded Date
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != date {
		t.Errorf("Unmarshal() = %v, want %v", decoded, date)
	}
}

// 远端存储返回带时间戳的日期也能解析
func TestDateUnmarshalTimestamp(t *testing.T) {
	var decoded Date
	if err := json.Unmarshal([]byte(`"2024-03-15T00:00:00Z"`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.String() != "2024-03-15" {
		t.Errorf("Unmarshal() = %v", decoded)
	}
}

func TestIsAbsoluteHTTPURL(t *testing.T) {
	valid := []string{
		"https://example.com/news/1",
		"http://news.example.org/path?a=1",
	}
	invalid := []string{
		"",
		"example.com/news",
		"ftp://example.com/a",
		"https://localhost",
	}

	for _, url := range valid {
		if !IsAbsoluteHTTPURL(url) {
			t.Errorf("IsAbsoluteHTTPURL(%q) = false, want true", url)
		}
	}
	for _, url := range invalid {
		if IsAbsoluteHTTPURL(url) {
			t.Errorf("IsAbsoluteHTTPURL(%q) = true, want false", url)
		}
	}
}
