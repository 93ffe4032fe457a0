package draft

import (
	"path/filepath"
	"testing"

	"github.com/dewei/MarketDiary/pkg/localstore"
	"github.com/dewei/MarketDiary/pkg/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("打开本地存储失败: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewCache(store)
}

// 全部是默认内容的草稿不落盘
func TestSaveSkipsBlankDraft(t *testing.T) {
	cache := newTestCache(t)

	blank := []model.Stock{{Name: "", Symbol: "", Price: 0, PriorDayPrice: 0}}
	if err := cache.Save("u1", blank); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, ok, _ := cache.Load("u1"); ok {
		t.Errorf("空白草稿不应被保存")
	}
}

// 空白草稿不冲掉已有的有效草稿
func TestBlankDraftDoesNotClobber(t *testing.T) {
	cache := newTestCache(t)

	useful := []model.Stock{{Name: "Acme", Symbol: "ACM", Price: 10}}
	if err := cache.Save("u1", useful); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := cache.Save("u1", []model.Stock{{}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	stocks, ok, err := cache.Load("u1")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	if stocks[0].Name != "Acme" {
		t.Errorf("有效草稿被空白表单覆盖: %v", stocks)
	}
}

func TestSaveAndLoad(t *testing.T) {
	cache := newTestCache(t)

	stocks := []model.Stock{{Name: "Acme", Symbol: "ACM", Kind: model.StockGlobal, Price: 10, PriorDayPrice: 0}}
	if err := cache.Save("u1", stocks); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, ok, err := cache.Load("u1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ok {
		t.Fatal("Load() ok = false, want 已保存的草稿")
	}
	if len(loaded) != 1 || loaded[0].Name != "Acme" || loaded[0].Symbol != "ACM" || loaded[0].Price != 10 {
		t.Errorf("Load() = %v, want 等价的股票行", loaded)
	}
}

// 草稿按用户隔离
func TestDraftKeyedByOwner(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Save("u1", []model.Stock{{Name: "Acme", Symbol: "ACM", Price: 10}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, ok, _ := cache.Load("u2"); ok {
		t.Errorf("其他用户不应读到 u1 的草稿")
	}
}

func TestClear(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Save("u1", []model.Stock{{Name: "Acme", Symbol: "ACM", Price: 10}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := cache.Clear("u1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := cache.Load("u1"); ok {
		t.Errorf("Clear 后仍能读到草稿")
	}
}
