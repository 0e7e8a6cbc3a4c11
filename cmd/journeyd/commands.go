package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/voyagehq/journeyd/internal/autosave"
	"github.com/voyagehq/journeyd/internal/chat"
	"github.com/voyagehq/journeyd/internal/config"
	"github.com/voyagehq/journeyd/internal/journeystore"
	"github.com/voyagehq/journeyd/internal/marketplace"
	"github.com/voyagehq/journeyd/internal/mutator"
	"github.com/voyagehq/journeyd/internal/projector"
	"github.com/voyagehq/journeyd/tui"
	"github.com/voyagehq/journeyd/web/api"
)

var (
	servePort    int
	initialTasks []string
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the journey API server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journeys",
		RunE:  runList,
	}
	rootCmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show JOURNEY",
		Short: "Show a journey's projected log",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	rootCmd.AddCommand(showCmd)

	newCmd := &cobra.Command{
		Use:   "new TITLE",
		Short: "Create a journey",
		Args:  cobra.ExactArgs(1),
		RunE:  runNew,
	}
	newCmd.Flags().StringArrayVar(&initialTasks, "task", nil, "initial task (repeatable)")
	rootCmd.AddCommand(newCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the example agent catalog into the seed directory",
		RunE:  runSeed,
	}
	rootCmd.AddCommand(seedCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui [JOURNEY]",
		Short: "Launch the journey dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	rootCmd.AddCommand(tuiCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*journeystore.Store, error) {
	if err := os.MkdirAll(cfg.General.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return journeystore.New(cfg.General.DatabasePath)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Web.Port = servePort
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog := marketplace.NewCatalog()
	if err := os.MkdirAll(cfg.General.SeedDir, 0o755); err != nil {
		return fmt.Errorf("creating seed dir: %w", err)
	}
	if err := catalog.LoadDir(cfg.General.SeedDir); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watcher, err := marketplace.NewSeedWatcher(catalog, cfg.General.SeedDir, func(files []string) {
		log.Printf("agent catalog reloaded after change to %d file(s)", len(files))
	})
	if err != nil {
		return err
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	runner := mutator.NewRunner(store, marketplace.KeywordMatcher{Catalog: catalog}, cfg.Mutation.Timeout())
	chatSvc := chat.NewService(runner, chat.CannedAssistant{})

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server := api.NewServer(store, runner, chatSvc, catalog, addr)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Autosave.Enabled {
		sweeper, err := autosave.New(store, cfg.Autosave.Schedule)
		if err != nil {
			return err
		}
		g.Go(func() error {
			sweeper.Start(ctx)
			return nil
		})
		defer sweeper.Stop()
	}

	g.Go(func() error {
		log.Printf("listening on %s", addr)
		return server.Start()
	})

	return g.Wait()
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.ListJourneys(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTASKS\tPHASES\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%s\n",
			s.ID, s.Title, s.Completed, s.Tasks, s.Phases, humanize.Time(s.UpdatedAt))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := store.GetJourney(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, item := range projector.Project(j.Log) {
		printItem(item)
	}
	return nil
}

func printItem(item projector.DisplayItem) {
	switch item.Kind {
	case projector.KindPlaceholder:
		fmt.Println("  (missing data)")
	case projector.KindPhaseGroup:
		fmt.Printf("%s\n", item.Entry.Phase.Name)
		for _, t := range item.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			fmt.Printf("  %s %s\n", box, t.Name)
		}
	default:
		prefix := ""
		if item.Superseded {
			prefix = "(superseded) "
		}
		e := item.Entry
		switch {
		case e.Task != nil:
			fmt.Printf("  %stask: %s\n", prefix, e.Task.Name)
		case e.Phase != nil:
			fmt.Printf("  %sphase: %s\n", prefix, e.Phase.Name)
		default:
			fmt.Printf("  %s%s: %s\n", prefix, e.Type, e.Text)
		}
	}
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := store.CreateJourney(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if len(initialTasks) > 0 {
		runner := mutator.NewRunner(store, nil, cfg.Mutation.Timeout())
		for _, name := range initialTasks {
			if _, err := runner.Execute(cmd.Context(), mutator.AddTask{Journey: j.ID, Name: name}); err != nil {
				return err
			}
		}
	}

	fmt.Println(j.ID)
	return nil
}

const exampleSeed = `agents:
  - id: agent-research
    name: Research Scout
    description: Gathers market and competitor data
    category: research
    keywords: [research, survey, market, competitor]
    installed: true
  - id: agent-writer
    name: Copy Writer
    description: Drafts briefs, posts and announcements
    category: content
    keywords: [write, draft, brief, post]
  - id: agent-budget
    name: Budget Analyst
    description: Reviews costs and budget approvals
    category: finance
    keywords: [budget, cost, invoice]
    installed: true
  - id: agent-scheduler
    name: Meeting Scheduler
    description: Finds slots and books meetings
    category: productivity
    keywords: [schedule, meeting, calendar]
`

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.General.SeedDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(cfg.General.SeedDir, "agents.yaml")
	if err := os.WriteFile(path, []byte(exampleSeed), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var journeyID string
	if len(args) > 0 {
		journeyID = args[0]
	}

	model := tui.NewModel(tui.ModelConfig{Store: store, JourneyID: journeyID})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
