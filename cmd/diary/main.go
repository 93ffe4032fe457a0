package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dewei/MarketDiary/pkg/auth"
	"github.com/dewei/MarketDiary/pkg/config"
	"github.com/dewei/MarketDiary/pkg/draft"
	"github.com/dewei/MarketDiary/pkg/form"
	"github.com/dewei/MarketDiary/pkg/gateway"
	"github.com/dewei/MarketDiary/pkg/localstore"
	"github.com/dewei/MarketDiary/pkg/logger"
	"github.com/dewei/MarketDiary/pkg/model"
	"github.com/dewei/MarketDiary/pkg/scheduler"
	"github.com/dewei/MarketDiary/pkg/store"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "diary",
		Short: "每日市场日记客户端",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigPath(), "配置文件路径")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env 一次命令运行需要的客户端组件
type env struct {
	cfg     *config.Config
	local   *localstore.Store
	creds   *auth.Credentials
	drafts  *draft.Cache
	store   *store.Store
	ownerID string
}

// newEnv 装配客户端组件
func newEnv() (*env, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.LogFile); err != nil {
		return nil, err
	}

	local, err := localstore.Open(cfg.Local.StorePath)
	if err != nil {
		return nil, err
	}

	creds := auth.NewCredentials(local)
	client := gateway.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, creds.Token)

	e := &env{
		cfg:    cfg,
		local:  local,
		creds:  creds,
		drafts: draft.NewCache(local),
		store:  store.NewStore(client, cfg.Remote.DebounceInterval),
	}
	if user, ok := creds.User(); ok {
		e.ownerID = user.ID
	}
	return e, nil
}

func (e *env) close() {
	e.local.Close()
}

// waitIdle 等待一次防抖读操作完成
func (e *env) waitIdle(changes <-chan struct{}, timeout time.Duration) store.State {
	deadline := time.After(timeout)
	for {
		state := e.store.State()
		if !state.Loading {
			return state
		}
		select {
		case <-changes:
		case <-deadline:
			return e.store.State()
		}
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "保存认证服务签发的持有者令牌",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			token := args[0]
			if err := e.creds.SaveToken(token); err != nil {
				return err
			}

			// 开发令牌携带用户身份，顺带保存用于草稿按用户区分
			parts := strings.SplitN(token, ":", 2)
			user := model.User{ID: parts[0], Role: model.RoleUser}
			if len(parts) == 2 && model.Role(parts[1]) == model.RoleAdmin {
				user.Role = model.RoleAdmin
			}
			if err := e.creds.SaveUser(user); err != nil {
				return err
			}

			fmt.Println("已登录")
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "清除本地保存的登录凭证",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.creds.Clear(); err != nil {
				return err
			}
			fmt.Println("已退出登录")
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部日记",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			changes := e.store.Watch()
			e.store.ListEntries(cmd.Context())
			state := e.waitIdle(changes, e.cfg.Remote.Timeout+e.cfg.Remote.DebounceInterval)

			if state.Error != "" {
				return fmt.Errorf("%s", state.Error)
			}
			printEntries(state.Entries)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "查看单条日记",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			changes := e.store.Watch()
			e.store.GetEntry(cmd.Context(), args[0])
			state := e.waitIdle(changes, e.cfg.Remote.Timeout+e.cfg.Remote.DebounceInterval)

			if state.Error != "" {
				return fmt.Errorf("%s", state.Error)
			}
			if state.CurrentEntry == nil {
				return fmt.Errorf("Entry not found")
			}
			printEntry(state.CurrentEntry)

			// 离开详情视图
			e.store.ClearCurrent()
			return nil
		},
	}
}

// rowFlags 新建/编辑共用的行参数
type rowFlags struct {
	date    string
	stocks  []string
	locals  []string
	globals []string
}

func bindRowFlags(cmd *cobra.Command, flags *rowFlags) {
	cmd.Flags().StringVar(&flags.date, "date", "", "日期 (2006-01-02)，默认今天")
	cmd.Flags().StringArrayVar(&flags.stocks, "stock", nil, "股票行：名称|代码|global或local|价格|前日价格")
	cmd.Flags().StringArrayVar(&flags.locals, "local", nil, "本地标题：内容|来源[|链接]")
	cmd.Flags().StringArrayVar(&flags.globals, "global", nil, "全球标题：内容|来源[|链接]")
}

// applyRowFlags 把命令行参数写入表单
// 通过表单的字段修改接口逐项写入，让草稿保存和涨跌幅实时重算照常发生
func applyRowFlags(f *form.Form, flags *rowFlags) error {
	if flags.date != "" {
		if err := f.SetDate(flags.date); err != nil {
			return err
		}
	}

	if len(flags.stocks) > 0 {
		for len(f.Stocks) > 0 {
			f.RemoveStock(0)
		}
		for i, spec := range flags.stocks {
			parts := strings.Split(spec, "|")
			if len(parts) != 5 {
				return fmt.Errorf("股票行格式错误: %q", spec)
			}
			if err := f.AddStock(); err != nil {
				return err
			}
			f.SetStockName(i, parts[0])
			f.SetStockSymbol(i, parts[1])
			f.SetStockKind(i, model.StockKind(parts[2]))
			if err := f.SetStockPrice(i, parts[3]); err != nil {
				return err
			}
			if err := f.SetStockPriorDayPrice(i, parts[4]); err != nil {
				return err
			}
		}
	}

	for _, section := range []struct {
		name  form.Section
		specs []string
	}{
		{form.SectionLocal, flags.locals},
		{form.SectionGlobal, flags.globals},
	} {
		if len(section.specs) == 0 {
			continue
		}
		for i, spec := range section.specs {
			parts := strings.Split(spec, "|")
			if len(parts) < 2 {
				return fmt.Errorf("标题格式错误: %q", spec)
			}
			if i > 0 {
				if err := f.AddHeadline(section.name); err != nil {
					return err
				}
			}
			f.SetHeadlineText(section.name, i, parts[0])
			f.SetHeadlineSource(section.name, i, parts[1])
		}
	}

	return nil
}

func addCmd() *cobra.Command {
	var flags rowFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "新建日记（未提交的股票行会以草稿保存）",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			// 新建表单挂载时消费一次草稿
			f := form.New(e.ownerID, e.drafts)
			if err := applyRowFlags(f, &flags); err != nil {
				return err
			}

			payload, err := f.BuildDraft()
			if err != nil {
				return err
			}

			entry, err := e.store.AddEntry(cmd.Context(), payload)
			if err != nil {
				return err
			}

			fmt.Printf("已创建日记 %s (%s)\n", entry.ID, entry.Date)
			return nil
		},
	}

	bindRowFlags(cmd, &flags)
	return cmd
}

func editCmd() *cobra.Command {
	var flags rowFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "编辑已有日记",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			entry, err := fetchEntry(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}

			// 编辑已有日记不触碰草稿
			f := form.NewEdit(entry)
			if err := applyRowFlags(f, &flags); err != nil {
				return err
			}

			payload, err := f.BuildDraft()
			if err != nil {
				return err
			}

			updated, err := e.store.UpdateEntry(cmd.Context(), entry.ID, payload)
			if err != nil {
				return err
			}

			fmt.Printf("已更新日记 %s (%s)\n", updated.ID, updated.Date)
			e.store.ClearCurrent()
			return nil
		},
	}

	bindRowFlags(cmd, &flags)
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "删除日记",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("已删除")
			return nil
		},
	}
}

func shareCmd() *cobra.Command {
	var section string
	var index int
	var url string

	cmd := &cobra.Command{
		Use:   "share [id]",
		Short: "把日记中的一条标题分享到公共信息流",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			entry, err := fetchEntry(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}

			f := form.NewEdit(entry)
			if err := f.ShareHeadline(form.Section(section), index, url); err != nil {
				return err
			}

			payload, err := f.BuildDraft()
			if err != nil {
				return err
			}

			if _, err := e.store.UpdateEntry(cmd.Context(), entry.ID, payload); err != nil {
				return err
			}

			fmt.Println("已分享标题")
			e.store.ClearCurrent()
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "local", "标题栏目：local 或 global")
	cmd.Flags().IntVar(&index, "index", 0, "标题行号，从 0 开始")
	cmd.Flags().StringVar(&url, "url", "", "标题链接，必须是绝对 HTTP(S) 链接")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "持续同步并打印日记列表变化",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			changes := e.store.Watch()
			e.store.ListEntries(cmd.Context())

			sched := scheduler.NewScheduler(e.store, e.cfg.Local.RefreshSpec)
			if err := sched.Start(cmd.Context()); err != nil {
				return err
			}
			defer sched.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case <-changes:
					state := e.store.State()
					if state.Loading {
						continue
					}
					if state.Error != "" {
						logger.Log.Warnf("同步失败: %s", state.Error)
						continue
					}
					printEntries(state.Entries)
				case <-quit:
					return nil
				}
			}
		},
	}
}

// fetchEntry 通过状态机拉取单条日记
func fetchEntry(ctx context.Context, e *env, id string) (*model.Entry, error) {
	changes := e.store.Watch()
	e.store.GetEntry(ctx, id)
	state := e.waitIdle(changes, e.cfg.Remote.Timeout+e.cfg.Remote.DebounceInterval)

	if state.Error != "" {
		return nil, fmt.Errorf("%s", state.Error)
	}
	if state.CurrentEntry == nil {
		return nil, fmt.Errorf("Entry not found")
	}
	return state.CurrentEntry, nil
}

// printEntries 打印日记列表
func printEntries(entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Println("暂无日记")
		return
	}
	for _, entry := range entries {
		fmt.Printf("%s  %s  股票 %d 条, 标题 %d 条\n",
			entry.ID, entry.Date,
			len(entry.Stocks),
			len(entry.LocalHeadlines)+len(entry.GlobalHeadlines))
	}
}

// printEntry 打印单条日记
func printEntry(entry *model.Entry) {
	fmt.Printf("日期: %s\n", entry.Date)
	fmt.Println("股票:")
	for _, stock := range entry.Stocks {
		fmt.Printf("  %-10s %-8s %-6s 价格 %.2f 前日 %.2f 涨跌 %.1f%%\n",
			stock.Name, stock.Symbol, stock.Kind,
			stock.Price, stock.PriorDayPrice, stock.PercentChange)
	}
	printHeadlines("本地标题", entry.LocalHeadlines)
	printHeadlines("全球标题", entry.GlobalHeadlines)
}

func printHeadlines(label string, headlines []model.Headline) {
	if len(headlines) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, h := range headlines {
		marker := ""
		if h.IsPublic() {
			marker = " [已分享]"
		}
		fmt.Printf("  %s (%s)%s\n", h.Text, h.Source, marker)
	}
}
