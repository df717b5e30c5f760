package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"betboard/internal/config"
	"betboard/internal/db"
	"betboard/internal/domain"
	"betboard/internal/migrate"
	"betboard/internal/queue"
	"betboard/internal/server"
	"betboard/internal/store"
	boardsync "betboard/internal/sync"
	"betboard/internal/timeline"
	betboardsdk "betboard/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "bb",
	Short: "Betboard CLI",
	Long: `Betboard tracks bets: commitments with an owner, a what/why/how, and a due date.
- Workspace: your .betboard directory holding the local snapshot database.
- Bets: move through Open -> In Progress -> Blocked -> Done; marking Done archives automatically.
- Timeline: 'bb timeline' lays every open bet on a shared date axis.
- Offline: writes against an unreachable remote are queued and replayed with 'bb sync push'.
- Event log: diary of changes, view with 'bb log tail'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BETBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor", "local-user", "actor recorded in the event log")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(betCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(timelineCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default betboard.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	return cmd
}

func betCmd() *cobra.Command {
	bet := &cobra.Command{Use: "bet", Short: "Manage bets"}
	bet.AddCommand(betListCmd())
	bet.AddCommand(betCreateCmd())
	bet.AddCommand(betShowCmd())
	bet.AddCommand(betUpdateCmd())
	bet.AddCommand(betDoneCmd())
	bet.AddCommand(betCommentCmd())
	bet.AddCommand(betArchiveCmd())
	bet.AddCommand(betRestoreCmd())
	bet.AddCommand(betDeleteCmd())
	return bet
}

func betListCmd() *cobra.Command {
	var owner, status, search string
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				var bets []domain.Bet
				if archived {
					bets = s.ArchivedBets()
				} else {
					bets = store.Filter(s.Bets(), domain.BetFilters{
						Owner:  owner,
						Status: status,
						Search: search,
					})
				}
				if viper.GetBool("json") {
					return printJSON(bets)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "What", "Owner", "Status", "Due", "Updated"})
				for _, b := range bets {
					tw.AppendRow(table.Row{b.ID, b.What, b.Owner, b.Status, b.When, b.LastUpdated})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner filter")
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().StringVar(&search, "search", "", "substring match over what/why/how")
	cmd.Flags().BoolVar(&archived, "archived", false, "list archived bets instead")
	return cmd
}

func betCreateCmd() *cobra.Command {
	var owner, what, why, how, when, status string
	var tags, assignees []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				b, err := s.AddBet(ctx, domain.Bet{
					Owner:     owner,
					What:      what,
					Why:       why,
					How:       how,
					When:      when,
					Status:    status,
					Tags:      tags,
					Assignees: assignees,
				})
				if err != nil {
					return err
				}
				if err := mirrorRemote(ctx, func(ctx context.Context, svc *boardsync.Service) error {
					return svc.CreateBet(ctx, sdkBet(b))
				}); err != nil {
					return err
				}
				return printJSONOrTable(b)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner (must be a known user)")
	cmd.Flags().StringVar(&what, "what", "", "what is being bet on")
	cmd.Flags().StringVar(&why, "why", "", "why it matters")
	cmd.Flags().StringVar(&how, "how", "", "how it gets done")
	cmd.Flags().StringVar(&when, "when", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default Open)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "assignee (repeatable)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("what")
	_ = cmd.MarkFlagRequired("why")
	_ = cmd.MarkFlagRequired("how")
	_ = cmd.MarkFlagRequired("when")
	return cmd
}

func betShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				b, ok := s.Bet(args[0])
				if !ok {
					return fmt.Errorf("bet %s not found", args[0])
				}
				return printJSONOrTable(b)
			})
		},
	}
	return cmd
}

func betUpdateCmd() *cobra.Command {
	var owner, what, why, how, when, status string
	var tags, assignees []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields on a bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				var patch store.BetPatch
				fields := map[string]any{}
				if cmd.Flags().Changed("owner") {
					patch.Owner = &owner
					fields["owner"] = owner
				}
				if cmd.Flags().Changed("what") {
					patch.What = &what
					fields["what"] = what
				}
				if cmd.Flags().Changed("why") {
					patch.Why = &why
					fields["why"] = why
				}
				if cmd.Flags().Changed("how") {
					patch.How = &how
					fields["how"] = how
				}
				if cmd.Flags().Changed("when") {
					patch.When = &when
					fields["when"] = when
				}
				if cmd.Flags().Changed("status") {
					patch.Status = &status
					fields["status"] = status
				}
				if cmd.Flags().Changed("tag") {
					patch.Tags = &tags
					fields["tags"] = tags
				}
				if cmd.Flags().Changed("assignee") {
					patch.Assignees = &assignees
					fields["assignees"] = assignees
				}
				b, err := s.UpdateBet(ctx, args[0], patch)
				if err != nil {
					return err
				}
				if err := mirrorRemote(ctx, func(ctx context.Context, svc *boardsync.Service) error {
					return svc.UpdateBet(ctx, b.ID, fields)
				}); err != nil {
					return err
				}
				printNotifications(s)
				return printJSONOrTable(b)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner")
	cmd.Flags().StringVar(&what, "what", "", "what")
	cmd.Flags().StringVar(&why, "why", "", "why")
	cmd.Flags().StringVar(&how, "how", "", "how")
	cmd.Flags().StringVar(&when, "when", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tags (replaces the set)")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "assignees (replaces the set)")
	return cmd
}

func betDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a bet Done (archives it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				b, err := s.CompleteBet(ctx, args[0])
				if err != nil {
					return err
				}
				if err := mirrorRemote(ctx, func(ctx context.Context, svc *boardsync.Service) error {
					return svc.UpdateBet(ctx, b.ID, map[string]any{"status": domain.StatusDone})
				}); err != nil {
					return err
				}
				printNotifications(s)
				return printJSONOrTable(b)
			})
		},
	}
	return cmd
}

func betCommentCmd() *cobra.Command {
	var author, text string
	cmd := &cobra.Command{
		Use:   "comment <id>",
		Short: "Add a comment to a bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				if author == "" {
					author = viper.GetString("actor")
				}
				c, err := s.AddComment(ctx, args[0], author, text)
				if err != nil {
					return err
				}
				if err := mirrorRemote(ctx, func(ctx context.Context, svc *boardsync.Service) error {
					return svc.AddComment(ctx, args[0], c.Author, c.Text)
				}); err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "comment author (defaults to --actor)")
	cmd.Flags().StringVar(&text, "text", "", "comment text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func betArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				b, err := s.ArchiveBet(ctx, args[0], viper.GetString("actor"))
				if err != nil {
					return err
				}
				return printJSONOrTable(b)
			})
		},
	}
	return cmd
}

func betRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore an archived bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				b, err := s.RestoreBet(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(b)
			})
		},
	}
	return cmd
}

func betDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bet permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				s.DeleteBet(ctx, args[0])
				return mirrorRemote(ctx, func(ctx context.Context, svc *boardsync.Service) error {
					return svc.DeleteBet(ctx, args[0])
				})
			})
		},
	}
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage the user roster"}
	user.AddCommand(userListCmd())
	user.AddCommand(userAddCmd())
	user.AddCommand(userRemoveCmd())
	return user
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				users := s.Users()
				if viper.GetBool("json") {
					return printJSON(users)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Name})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				u, err := s.AddUser(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(u)
			})
		},
	}
	return cmd
}

func userRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				return s.RemoveUser(ctx, args[0])
			})
		},
	}
	return cmd
}

func timelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Render the bet timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				layout := timeline.Compute(s.FilteredBets(), time.Now())
				if viper.GetBool("json") {
					return printJSON(layout)
				}
				if len(layout.Bars) == 0 {
					fmt.Println("no bets to lay out")
					return nil
				}
				fmt.Printf("Axis: %s to %s (%d days)\n",
					timeline.FormatDay(layout.AxisStart),
					timeline.FormatDay(layout.AxisEnd),
					layout.TotalDays)
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"What", "Owner", "Due", "Width%", "Category", "Overdue"})
				for _, bar := range layout.Bars {
					tw.AppendRow(table.Row{
						bar.Bet.What,
						bar.Bet.Owner,
						bar.Bet.When,
						fmt.Sprintf("%.1f", bar.Width),
						string(bar.Category),
						bar.Overdue,
					})
				}
				tw.Render()
				for _, m := range layout.Markers {
					fmt.Printf("  gridline %s at %.1f%%\n", m.Label, m.Position)
				}
				return nil
			})
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of everything that happened on the board.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, betID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				items, err := s.Events.Latest(ctx, n, evtType, betID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Bet", "Actor"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.TS, e.Type, e.BetID, e.Actor})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&betID, "bet", "", "bet id filter")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Offline replay queue",
	}
	cmd.AddCommand(syncStatusCmd())
	cmd.AddCommand(syncPushCmd())
	cmd.AddCommand(syncPullCmd())
	return cmd
}

func syncStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending queued actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queue.Open(queuePath())
			if err != nil {
				return err
			}
			defer q.Close()
			actions, err := q.Batch(0)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(actions)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Type", "Endpoint", "Queued At", "Retries"})
			for _, a := range actions {
				tw.AppendRow(table.Row{a.Type, a.Endpoint, a.Timestamp.Format(time.RFC3339), a.Retries})
			}
			tw.Render()
			return nil
		},
	}
	return cmd
}

func syncPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Replay queued actions against the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if cfg.Remote.BaseURL == "" {
				return fmt.Errorf("remote.base_url is not configured")
			}
			q, err := queue.Open(queuePath())
			if err != nil {
				return err
			}
			defer q.Close()
			client := betboardsdk.New(cfg.Remote.BaseURL)
			client.Timeout = cfg.RemoteTimeout()
			log, _ := zap.NewProduction()
			defer log.Sync()
			svc := boardsync.New(client, q, log)
			before, _ := svc.Pending()
			if err := svc.Drain(cmd.Context()); err != nil {
				return err
			}
			after, _ := svc.Pending()
			fmt.Printf("replayed %d action(s), %d pending\n", before-after, after)
			return nil
		},
	}
	return cmd
}

func syncPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace local state with the remote board",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			if cfg.Remote.BaseURL == "" {
				return fmt.Errorf("remote.base_url is not configured")
			}
			return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
				client := betboardsdk.New(cfg.Remote.BaseURL)
				client.Timeout = cfg.RemoteTimeout()
				svc := boardsync.New(client, nil, nil)
				if err := svc.Refresh(ctx, s); err != nil {
					return err
				}
				fmt.Printf("pulled %d bet(s), %d user(s)\n", len(s.Bets()), len(s.Users()))
				return nil
			})
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()
			s := store.New(conn, cfg, log)
			if err := s.Load(cmd.Context()); err != nil {
				return err
			}
			defer s.Close()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}
			secret := cfg.Server.JWTSecret
			if env := os.Getenv("BETBOARD_JWT_SECRET"); env != "" {
				secret = env
			}
			handler, err := server.New(server.Config{
				Store:    s,
				BasePath: basePath,
				Auth:     server.AuthConfig{JWTSecret: secret},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Betboard API on http://%s%s\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from config)")
	return cmd
}

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	s := store.New(conn, cfg, zap.NewNop())
	if err := s.Load(ctx); err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func queuePath() string {
	return db.QueuePath(viper.GetString("workspace"))
}

// remoteService builds the sync service for the configured remote. The
// service is nil when remote.base_url is unset.
func remoteService() (*boardsync.Service, func(), error) {
	cfg, err := config.Load(viper.GetString("workspace"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Remote.BaseURL == "" {
		return nil, func() {}, nil
	}
	q, err := queue.Open(queuePath())
	if err != nil {
		return nil, nil, err
	}
	client := betboardsdk.New(cfg.Remote.BaseURL)
	client.Timeout = cfg.RemoteTimeout()
	log, _ := zap.NewProduction()
	svc := boardsync.New(client, q, log)
	svc.OfflineDisabled = !cfg.Remote.OfflineQueue
	return svc, func() {
		log.Sync()
		q.Close()
	}, nil
}

// mirrorRemote applies a write against the configured remote, queueing it
// for replay when the remote is unreachable. No-op without a remote.
func mirrorRemote(ctx context.Context, fn func(context.Context, *boardsync.Service) error) error {
	svc, done, err := remoteService()
	if err != nil {
		return err
	}
	defer done()
	if svc == nil {
		return nil
	}
	return fn(ctx, svc)
}

func sdkBet(b domain.Bet) betboardsdk.Bet {
	out := betboardsdk.Bet{
		ID:          b.ID,
		Owner:       b.Owner,
		What:        b.What,
		Why:         b.Why,
		How:         b.How,
		When:        b.When,
		Status:      b.Status,
		LastUpdated: b.LastUpdated,
		Tags:        b.Tags,
		Assignees:   b.Assignees,
		Archived:    b.Archived,
		ArchivedAt:  b.ArchivedAt,
		ArchivedBy:  b.ArchivedBy,
	}
	for _, c := range b.Comments {
		out.Comments = append(out.Comments, betboardsdk.Comment{
			ID:     c.ID,
			Author: c.Author,
			Text:   c.Text,
			Date:   c.Date,
		})
	}
	return out
}

func printNotifications(s *store.Store) {
	for _, n := range s.Notifications() {
		fmt.Printf("[%s] %s\n", n.Kind, n.Message)
	}
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
