package api

import (
	"testing"

	"github.com/dewei/MarketDiary/pkg/model"
)

func validStock() model.Stock {
	return model.Stock{
		Name:          "Acme Corp",
		Symbol:        "ACME",
		Kind:          model.StockGlobal,
		Price:         110,
		PriorDayPrice: 100,
	}
}

func TestValidateDraft(t *testing.T) {
	manyStocks := make([]model.Stock, maxRows+1)
	for i := range manyStocks {
		manyStocks[i] = validStock()
	}
	manyHeadlines := make([]model.Headline, maxRows+1)

	tests := []struct {
		name    string
		draft   model.EntryDraft
		wantMsg string
		wantOK  bool
	}{
		{
			name:    "缺少日期",
			draft:   model.EntryDraft{Stocks: []model.Stock{validStock()}},
			wantMsg: "Date is required",
		},
		{
			name:    "没有有效股票行",
			draft:   model.EntryDraft{Date: model.NewDate(2024, 3, 15)},
			wantMsg: "At least one stock with name and symbol is required",
		},
		{
			name: "只有名称没有代码不算有效行",
			draft: model.EntryDraft{
				Date:   model.NewDate(2024, 3, 15),
				Stocks: []model.Stock{{Name: "Acme Corp"}},
			},
			wantMsg: "At least one stock with name and symbol is required",
		},
		{
			name: "有效行价格必须大于零",
			draft: model.EntryDraft{
				Date:   model.NewDate(2024, 3, 15),
				Stocks: []model.Stock{{Name: "Acme Corp", Symbol: "ACME", Price: 110}},
			},
			wantMsg: "All stocks must have valid price and one-day price values greater than zero",
		},
		{
			name: "股票行超限",
			draft: model.EntryDraft{
				Date:   model.NewDate(2024, 3, 15),
				Stocks: manyStocks,
			},
			wantMsg: "Maximum 15 stocks allowed",
		},
		{
			name: "本地标题超限",
			draft: model.EntryDraft{
				Date:           model.NewDate(2024, 3, 15),
				Stocks:         []model.Stock{validStock()},
				LocalHeadlines: manyHeadlines,
			},
			wantMsg: "Maximum 15 local headlines allowed",
		},
		{
			name: "全球标题超限",
			draft: model.EntryDraft{
				Date:            model.NewDate(2024, 3, 15),
				Stocks:          []model.Stock{validStock()},
				GlobalHeadlines: manyHeadlines,
			},
			wantMsg: "Maximum 15 global headlines allowed",
		},
		{
			name: "合法草稿",
			draft: model.EntryDraft{
				Date:   model.NewDate(2024, 3, 15),
				Stocks: []model.Stock{validStock()},
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := validateDraft(&tt.draft)
			if ok != tt.wantOK {
				t.Fatalf("validateDraft() ok = %v, want %v (msg %q)", ok, tt.wantOK, msg)
			}
			if msg != tt.wantMsg {
				t.Errorf("validateDraft() msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

// 服务端保存前重算涨跌幅，客户端送来的值不作数
func TestValidateDraftRecomputesPercentChange(t *testing.T) {
	stock := validStock()
	stock.PercentChange = 99.99

	draft := model.EntryDraft{
		Date:   model.NewDate(2024, 3, 15),
		Stocks: []model.Stock{stock},
	}

	if msg, ok := validateDraft(&draft); !ok {
		t.Fatalf("validateDraft() 失败: %s", msg)
	}
	if draft.Stocks[0].PercentChange != 10 {
		t.Errorf("PercentChange = %v, want 10", draft.Stocks[0].PercentChange)
	}
}

// 公开标题集合只包含已分享且链接合法的标题
func TestPublicHeadlineIDs(t *testing.T) {
	entry := &model.Entry{
		LocalHeadlines: []model.Headline{
			{ID: "h1", Text: "a", Shared: true, URL: "https://example.com/a"},
			{ID: "h2", Text: "b", Shared: true}, // 无链接，不算公开
		},
		GlobalHeadlines: []model.Headline{
			{ID: "h3", Text: "c", Shared: false, URL: "https://example.com/c"},
			{ID: "h4", Text: "d", Shared: true, URL: "https://example.com/d"},
		},
	}

	ids := publicHeadlineIDs(entry)
	if len(ids) != 2 || !ids["h1"] || !ids["h4"] {
		t.Errorf("publicHeadlineIDs() = %v", ids)
	}
}
