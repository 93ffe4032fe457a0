package form

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dewei/MarketDiary/pkg/calc"
	"github.com/dewei/MarketDiary/pkg/draft"
	"github.com/dewei/MarketDiary/pkg/model"
)

// 单条日记里各类行的数量上限
const maxRows = 15

// Section 标题所属的栏目
type Section string

const (
	SectionLocal  Section = "local"
	SectionGlobal Section = "global"
)

// ValidationError 客户端预检错误
// 在发起网络请求之前同步报告，永远不会进入状态机的 Error 字段
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// 价格输入只接受十进制数字和至多一个小数点
var priceInputPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// StockRow 表单中的一行股票
// 价格字段同时保留原始文本和解析后的数值：
// 文本用于回显和提交前校验，数值用于实时计算涨跌幅
type StockRow struct {
	Stock              model.Stock
	PriceInput         string
	PriorDayPriceInput string
}

// Form 日记表单引擎
// 新建模式下挂载时读取一次草稿，之后每次股票行变化都覆盖保存草稿；
// 编辑已有日记时完全不触碰草稿
type Form struct {
	EditID  string
	ownerID string
	drafts  *draft.Cache

	Date            model.Date
	Stocks          []StockRow
	LocalHeadlines  []model.Headline
	GlobalHeadlines []model.Headline
}

// New 创建"新建日记"表单：一行空股票、各一行空标题、日期默认今天
// 存在草稿时用草稿填充股票行（只消费这一次）
func New(ownerID string, drafts *draft.Cache) *Form {
	f := &Form{
		ownerID:         ownerID,
		drafts:          drafts,
		Date:            model.Today(),
		Stocks:          []StockRow{blankStockRow()},
		LocalHeadlines:  []model.Headline{{}},
		GlobalHeadlines: []model.Headline{{}},
	}

	if drafts != nil {
		if stocks, ok, err := drafts.Load(ownerID); err == nil && ok {
			f.Stocks = rowsFromStocks(stocks)
		}
	}

	return f
}

// NewEdit 从已有日记创建编辑表单，空栏目用一行空白行占位
func NewEdit(entry *model.Entry) *Form {
	f := &Form{
		EditID:          entry.ID,
		Date:            entry.Date,
		Stocks:          rowsFromStocks(entry.Stocks),
		LocalHeadlines:  append([]model.Headline(nil), entry.LocalHeadlines...),
		GlobalHeadlines: append([]model.Headline(nil), entry.GlobalHeadlines...),
	}

	if len(f.Stocks) == 0 {
		f.Stocks = []StockRow{blankStockRow()}
	}
	if len(f.LocalHeadlines) == 0 {
		f.LocalHeadlines = []model.Headline{{}}
	}
	if len(f.GlobalHeadlines) == 0 {
		f.GlobalHeadlines = []model.Headline{{}}
	}

	return f
}

// SetDate 设置日记日期
func (f *Form) SetDate(value string) error {
	date, err := model.ParseDate(value)
	if err != nil {
		return &ValidationError{Message: "Date is required"}
	}
	f.Date = date
	return nil
}

// SetStockName 设置股票名称
func (f *Form) SetStockName(index int, name string) {
	if index < 0 || index >= len(f.Stocks) {
		return
	}
	f.Stocks[index].Stock.Name = name
	f.saveDraft()
}

// SetStockSymbol 设置股票代码
func (f *Form) SetStockSymbol(index int, symbol string) {
	if index < 0 || index >= len(f.Stocks) {
		return
	}
	f.Stocks[index].Stock.Symbol = symbol
	f.saveDraft()
}

// SetStockKind 设置股票类别
func (f *Form) SetStockKind(index int, kind model.StockKind) {
	if index < 0 || index >= len(f.Stocks) {
		return
	}
	f.Stocks[index].Stock.Kind = kind
	f.saveDraft()
}

// SetStockPrice 设置当前价格的文本输入
// 拒绝非法字符；输入为空或只有小数点时保留文本但不更新数值；
// 两个价格都就绪时立即重算涨跌幅，让界面实时预览
func (f *Form) SetStockPrice(index int, value string) error {
	return f.setPriceField(index, value, true)
}

// SetStockPriorDayPrice 设置前一日价格的文本输入
func (f *Form) SetStockPriorDayPrice(index int, value string) error {
	return f.setPriceField(index, value, false)
}

// setPriceField 价格字段的公共处理
func (f *Form) setPriceField(index int, value string, isPrice bool) error {
	if index < 0 || index >= len(f.Stocks) {
		return nil
	}
	if value != "" && !priceInputPattern.MatchString(value) {
		return &ValidationError{Message: "Price must be a decimal number"}
	}

	row := &f.Stocks[index]
	if isPrice {
		row.PriceInput = value
	} else {
		row.PriorDayPriceInput = value
	}

	// 空输入和单独的小数点先不落到数值上
	if value == "" || value == "." {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	if isPrice {
		row.Stock.Price = parsed
	} else {
		row.Stock.PriorDayPrice = parsed
	}

	// 每次编辑任一价格字段都重算，而不是等到提交
	if row.Stock.Price > 0 && row.Stock.PriorDayPrice > 0 {
		row.Stock.PercentChange = calc.PercentChange(row.Stock.Price, row.Stock.PriorDayPrice)
	} else {
		row.Stock.PercentChange = 0
	}

	f.saveDraft()
	return nil
}

// PriceInputValue 返回价格字段的回显文本：优先原始输入，数值为 0 时显示空
func (f *Form) PriceInputValue(index int, isPrice bool) string {
	if index < 0 || index >= len(f.Stocks) {
		return ""
	}
	row := f.Stocks[index]
	if isPrice {
		if row.PriceInput != "" {
			return row.PriceInput
		}
		return formatPrice(row.Stock.Price)
	}
	if row.PriorDayPriceInput != "" {
		return row.PriorDayPriceInput
	}
	return formatPrice(row.Stock.PriorDayPrice)
}

// AddStock 追加一行空股票，超过上限时报错
func (f *Form) AddStock() error {
	if len(f.Stocks) >= maxRows {
		return &ValidationError{Message: "Maximum 15 stocks allowed"}
	}
	f.Stocks = append(f.Stocks, blankStockRow())
	return nil
}

// RemoveStock 删除一行股票
func (f *Form) RemoveStock(index int) {
	if index < 0 || index >= len(f.Stocks) {
		return
	}
	f.Stocks = append(f.Stocks[:index], f.Stocks[index+1:]...)
	f.saveDraft()
}

// AddHeadline 追加一行空标题，超过上限时报错
func (f *Form) AddHeadline(section Section) error {
	switch section {
	case SectionLocal:
		if len(f.LocalHeadlines) >= maxRows {
			return &ValidationError{Message: "Maximum 15 local headlines allowed"}
		}
		f.LocalHeadlines = append(f.LocalHeadlines, model.Headline{})
	case SectionGlobal:
		if len(f.GlobalHeadlines) >= maxRows {
			return &ValidationError{Message: "Maximum 15 global headlines allowed"}
		}
		f.GlobalHeadlines = append(f.GlobalHeadlines, model.Headline{})
	}
	return nil
}

// RemoveHeadline 删除一行标题
func (f *Form) RemoveHeadline(section Section, index int) {
	headlines := f.headlines(section)
	if headlines == nil || index < 0 || index >= len(*headlines) {
		return
	}
	*headlines = append((*headlines)[:index], (*headlines)[index+1:]...)
}

// SetHeadlineText 设置标题内容
func (f *Form) SetHeadlineText(section Section, index int, text string) {
	headlines := f.headlines(section)
	if headlines == nil || index < 0 || index >= len(*headlines) {
		return
	}
	(*headlines)[index].Text = text
}

// SetHeadlineSource 设置标题来源
func (f *Form) SetHeadlineSource(section Section, index int, source string) {
	headlines := f.headlines(section)
	if headlines == nil || index < 0 || index >= len(*headlines) {
		return
	}
	(*headlines)[index].Source = source
}

// ShareHeadline 把标题分享到公共信息流
// 要求合法的绝对 HTTP(S) 链接；分享是单向的，这里没有取消入口
func (f *Form) ShareHeadline(section Section, index int, url string) error {
	headlines := f.headlines(section)
	if headlines == nil || index < 0 || index >= len(*headlines) {
		return &ValidationError{Message: "Headline not found"}
	}

	url = strings.TrimSpace(url)
	if url == "" {
		return &ValidationError{Message: "URL is required to share a headline"}
	}
	if !model.IsAbsoluteHTTPURL(url) {
		return &ValidationError{Message: "Please enter a valid URL (must start with http or https)"}
	}

	(*headlines)[index].URL = url
	(*headlines)[index].Shared = true
	return nil
}

// Validate 提交前的客户端预检
// 日期必填；至少一行填了名称和代码的股票；这些股票的两个价格都必须大于零
func (f *Form) Validate() error {
	if f.Date.IsZero() {
		return &ValidationError{Message: "Date is required"}
	}

	valid := 0
	for _, row := range f.Stocks {
		if strings.TrimSpace(row.Stock.Name) == "" || strings.TrimSpace(row.Stock.Symbol) == "" {
			continue
		}
		valid++

		price := parsePrice(row.PriceInput, row.Stock.Price)
		prior := parsePrice(row.PriorDayPriceInput, row.Stock.PriorDayPrice)
		if price <= 0 || prior <= 0 {
			return &ValidationError{Message: "All stocks must have valid price and one-day price values greater than zero"}
		}
	}

	if valid == 0 {
		return &ValidationError{Message: "At least one stock with name and symbol is required"}
	}

	return nil
}

// BuildDraft 构造提交载荷
// 过滤空白行、按最终输入重解析价格并重算涨跌幅，保证持久化的
// PercentChange 永远和两个价格一致
func (f *Form) BuildDraft() (model.EntryDraft, error) {
	if err := f.Validate(); err != nil {
		return model.EntryDraft{}, err
	}

	var stocks []model.Stock
	for _, row := range f.Stocks {
		if strings.TrimSpace(row.Stock.Name) == "" || strings.TrimSpace(row.Stock.Symbol) == "" {
			continue
		}

		stock := row.Stock
		stock.Price = parsePrice(row.PriceInput, row.Stock.Price)
		stock.PriorDayPrice = parsePrice(row.PriorDayPriceInput, row.Stock.PriorDayPrice)
		stock.PercentChange = calc.PercentChange(stock.Price, stock.PriorDayPrice)
		stocks = append(stocks, stock)
	}

	return model.EntryDraft{
		Date:            f.Date,
		Stocks:          stocks,
		LocalHeadlines:  filterHeadlines(f.LocalHeadlines),
		GlobalHeadlines: filterHeadlines(f.GlobalHeadlines),
	}, nil
}

// headlines 返回指定栏目的标题切片
func (f *Form) headlines(section Section) *[]model.Headline {
	switch section {
	case SectionLocal:
		return &f.LocalHeadlines
	case SectionGlobal:
		return &f.GlobalHeadlines
	}
	return nil
}

// saveDraft 新建模式下把当前股票行写入草稿缓存
func (f *Form) saveDraft() {
	if f.EditID != "" || f.drafts == nil {
		return
	}

	stocks := make([]model.Stock, len(f.Stocks))
	for i, row := range f.Stocks {
		stocks[i] = row.Stock
	}
	f.drafts.Save(f.ownerID, stocks)
}

// blankStockRow 返回一行默认股票
func blankStockRow() StockRow {
	return StockRow{Stock: model.Stock{Kind: model.StockGlobal}}
}

// rowsFromStocks 把股票列表还原成表单行，价格文本按数值初始化
func rowsFromStocks(stocks []model.Stock) []StockRow {
	rows := make([]StockRow, len(stocks))
	for i, stock := range stocks {
		rows[i] = StockRow{
			Stock:              stock,
			PriceInput:         formatPrice(stock.Price),
			PriorDayPriceInput: formatPrice(stock.PriorDayPrice),
		}
	}
	return rows
}

// filterHeadlines 丢弃内容或来源为空的标题行
func filterHeadlines(headlines []model.Headline) []model.Headline {
	var kept []model.Headline
	for _, h := range headlines {
		if strings.TrimSpace(h.Text) != "" && strings.TrimSpace(h.Source) != "" {
			kept = append(kept, h)
		}
	}
	return kept
}

// parsePrice 解析最终提交的价格，输入缺失时回退到行内数值
func parsePrice(input string, fallback float64) float64 {
	if input == "" || input == "." {
		return fallback
	}
	parsed, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// formatPrice 价格回显文本，零值显示为空
func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
