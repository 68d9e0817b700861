package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/beckyeh8888/free-crm-sub001/internal/config"
	internal_http "github.com/beckyeh8888/free-crm-sub001/internal/http"
	"github.com/beckyeh8888/free-crm-sub001/internal/log"
	internal_storage "github.com/beckyeh8888/free-crm-sub001/internal/storage"
	"github.com/beckyeh8888/free-crm-sub001/pkg/models"
	"github.com/beckyeh8888/free-crm-sub001/pkg/service"
	"github.com/beckyeh8888/free-crm-sub001/pkg/storage"
)

const dateLayout = "2006-01-02"

func SetupCLI(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				log.GetLogger().Errorf("Error retrieving config flag: %v", err)
				os.Exit(1)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				log.GetLogger().Errorf("Failed to load config: %v", err)
				fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
				os.Exit(1)
			}
			dbConnStr := dbFlag(cmd)
			if dbConnStr == "" {
				dbConnStr = cfg.DatabaseURL
			}
			if dbConnStr == "" {
				fmt.Println("Error: --db flag or database_url config required")
				os.Exit(1)
			}
			store := initStore(dbConnStr)
			defer store.Close()
			err = internal_http.StartServer(internal_http.ServerConfig{
				Port:         cfg.Port,
				DefaultScale: models.Scale(cfg.DefaultScale),
				RowHeight:    cfg.RowHeight,
				Workers:      cfg.ProjectionWorker,
			}, store)
			if err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				fmt.Fprintf(os.Stderr, "Error: server stopped: %v\n", err)
				os.Exit(1)
			}
		},
	}
	serveCmd.Flags().String("config", "", "Path to a gantt.yaml config file")

	depCmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependency edges (CLI)",
	}

	depAddCmd := &cobra.Command{
		Use:   "add workspace=<id> prerequisite=<task> dependent=<task> [type=<dependency type>]",
		Short: "Add a dependency edge (CLI)",
		Args:  cobra.RangeArgs(3, 4),
		Run: func(cmd *cobra.Command, args []string) {
			kv := argMap(args)
			workspaceID := parseWorkspace(kv["workspace"])
			if kv["prerequisite"] == "" || kv["dependent"] == "" {
				fmt.Println("Error: workspace, prerequisite and dependent are required")
				os.Exit(1)
			}
			store := initStore(dbFlag(cmd))
			defer store.Close()
			svc := service.NewDependencyService(store, log.GetLogger())
			addDependency(svc, workspaceID, kv["prerequisite"], kv["dependent"], models.DependencyType(kv["type"]))
		},
	}

	depRemoveCmd := &cobra.Command{
		Use:   "rm workspace=<id> (id=<edge id> | prerequisite=<task> dependent=<task>)",
		Short: "Remove a dependency edge (CLI)",
		Args:  cobra.RangeArgs(2, 3),
		Run: func(cmd *cobra.Command, args []string) {
			kv := argMap(args)
			workspaceID := parseWorkspace(kv["workspace"])
			sel := service.DependencySelector{
				EdgeID:         kv["id"],
				PrerequisiteID: kv["prerequisite"],
				DependentID:    kv["dependent"],
			}
			if sel.EdgeID == "" && (sel.PrerequisiteID == "" || sel.DependentID == "") {
				fmt.Println("Error: id or the prerequisite/dependent pair is required")
				os.Exit(1)
			}
			store := initStore(dbFlag(cmd))
			defer store.Close()
			svc := service.NewDependencyService(store, log.GetLogger())
			removeDependency(svc, workspaceID, sel)
		},
	}

	depListCmd := &cobra.Command{
		Use:   "ls workspace=<id> task=<task>",
		Short: "List the edges around a task (CLI)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			kv := argMap(args)
			workspaceID := parseWorkspace(kv["workspace"])
			if kv["task"] == "" {
				fmt.Println("Error: workspace and task are required")
				os.Exit(1)
			}
			store := initStore(dbFlag(cmd))
			defer store.Close()
			svc := service.NewDependencyService(store, log.GetLogger())
			listDependencies(svc, workspaceID, kv["task"])
		},
	}

	depCmd.AddCommand(depAddCmd, depRemoveCmd, depListCmd)

	viewCmd := &cobra.Command{
		Use:   "view workspace=<id> [scale=<week|month|quarter|year>] [ref=<YYYY-MM-DD>] [tasks=<id,id,...>]",
		Short: "Print the timeline projection for a workspace (CLI)",
		Args:  cobra.RangeArgs(1, 4),
		Run: func(cmd *cobra.Command, args []string) {
			kv := argMap(args)
			workspaceID := parseWorkspace(kv["workspace"])
			scale := models.ScaleMonth
			if kv["scale"] != "" {
				scale = models.Scale(kv["scale"])
			}
			ref := time.Now()
			if kv["ref"] != "" {
				parsed, err := time.Parse(dateLayout, kv["ref"])
				if err != nil {
					fmt.Printf("Error parsing ref as date: %v\n", err)
					os.Exit(1)
				}
				ref = parsed
			}
			var taskIDs []string
			if kv["tasks"] != "" {
				taskIDs = strings.Split(kv["tasks"], ",")
			}
			store := initStore(dbFlag(cmd))
			defer store.Close()
			svc := service.NewGanttService(store, log.GetLogger())
			printView(svc, workspaceID, scale, ref, taskIDs)
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed file=<fixture.yaml>",
		Short: "Load tasks and dependency edges from a YAML fixture (CLI)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			kv := argMap(args)
			if kv["file"] == "" {
				fmt.Println("Error: file is required")
				os.Exit(1)
			}
			fixture, err := loadFixture(kv["file"])
			if err != nil {
				log.GetLogger().Errorf("Failed to load fixture: %v", err)
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			store := initStore(dbFlag(cmd))
			defer store.Close()
			if err := seedWorkspace(store, log.GetLogger(), fixture); err != nil {
				log.GetLogger().Errorf("Failed to seed workspace: %v", err)
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stdout, "Seeded workspace %d with %d tasks and %d dependencies\n",
				fixture.Workspace, len(fixture.Tasks), len(fixture.Dependencies))
		},
	}

	rootCmd.AddCommand(serveCmd, depCmd, viewCmd, seedCmd)
}

func addDependency(svc *service.DependencyService, workspaceID int64, prerequisiteID, dependentID string, depType models.DependencyType) {
	edge, err := svc.CreateDependency(workspaceID, prerequisiteID, dependentID, depType)
	if err != nil {
		log.GetLogger().Errorf("Failed to add dependency: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to add dependency: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Added dependency '%s -> %s' with ID %s\n", edge.PrerequisiteID, edge.DependentID, edge.ID)
}

func removeDependency(svc *service.DependencyService, workspaceID int64, sel service.DependencySelector) {
	if err := svc.DeleteDependency(workspaceID, sel); err != nil {
		log.GetLogger().Errorf("Failed to remove dependency: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to remove dependency: %v\n", err)
		os.Exit(1)
	}
	if sel.EdgeID != "" {
		fmt.Fprintf(os.Stdout, "Removed dependency %s\n", sel.EdgeID)
		return
	}
	fmt.Fprintf(os.Stdout, "Removed dependency '%s -> %s'\n", sel.PrerequisiteID, sel.DependentID)
}

func listDependencies(svc *service.DependencyService, workspaceID int64, taskID string) {
	prerequisites, dependents, err := svc.ListDependencies(workspaceID, taskID)
	if err != nil {
		log.GetLogger().Errorf("Failed to list dependencies: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to list dependencies: %v\n", err)
		os.Exit(1)
	}
	if len(prerequisites) == 0 && len(dependents) == 0 {
		fmt.Fprintf(os.Stdout, "No dependencies found for task %s.\n", taskID)
		return
	}
	if len(prerequisites) > 0 {
		fmt.Fprintf(os.Stdout, "Prerequisites of %s:\n", taskID)
		printEdges(prerequisites)
	}
	if len(dependents) > 0 {
		fmt.Fprintf(os.Stdout, "Dependents of %s:\n", taskID)
		printEdges(dependents)
	}
}

func printEdges(edges []models.DependencyEdge) {
	for _, edge := range edges {
		fmt.Fprintf(os.Stdout, "- ID: %s, %s -> %s, Type: %s, Created: %s\n",
			edge.ID, edge.PrerequisiteID, edge.DependentID, edge.Type, edge.CreatedAt.Format(time.RFC3339))
	}
}

func printView(svc *service.GanttService, workspaceID int64, scale models.Scale, ref time.Time, taskIDs []string) {
	view, err := svc.GanttView(workspaceID, scale, ref, taskIDs)
	if err != nil {
		log.GetLogger().Errorf("Failed to project view: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to project view: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "Window: %s .. %s (%s), %d columns\n",
		view.Window.Start.Format(dateLayout), view.Window.End.Format(dateLayout),
		view.Window.Scale, len(view.Columns))
	if len(view.Bars) == 0 {
		fmt.Fprintf(os.Stdout, "No tasks found.\n")
		return
	}
	ids := make([]string, 0, len(view.Bars))
	for id := range view.Bars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Fprintf(os.Stdout, "Bars:\n")
	for _, id := range ids {
		bar := view.Bars[id]
		if bar == nil {
			fmt.Fprintf(os.Stdout, "- %s: not visible\n", id)
			continue
		}
		fmt.Fprintf(os.Stdout, "- %s: left %.2f%%, width %.2f%%\n", id, bar.Left, bar.Width)
	}
	if len(view.Edges) > 0 {
		fmt.Fprintf(os.Stdout, "Connectors:\n")
		for _, edge := range view.Edges {
			fmt.Fprintf(os.Stdout, "- %s -> %s: %s\n", edge.From, edge.To, edge.Path.SVG())
		}
	}
}

// seedFixture is the YAML shape consumed by the seed command: one
// workspace id, its tasks and the edges between them.
type seedFixture struct {
	Workspace    int64            `yaml:"workspace"`
	Tasks        []seedTask       `yaml:"tasks"`
	Dependencies []seedDependency `yaml:"dependencies"`
}

type seedTask struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Color     string `yaml:"color"`
	Completed bool   `yaml:"completed"`
}

type seedDependency struct {
	Prerequisite string `yaml:"prerequisite"`
	Dependent    string `yaml:"dependent"`
	Type         string `yaml:"type"`
}

func loadFixture(path string) (seedFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFixture{}, errors.Wrap(err, "failed to read fixture")
	}
	var fixture seedFixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return seedFixture{}, errors.Wrap(err, "failed to parse fixture")
	}
	if fixture.Workspace <= 0 {
		return seedFixture{}, errors.New("fixture needs a positive 'workspace' id")
	}
	return fixture, nil
}

// seedWorkspace writes the fixture's tasks directly to the store and
// routes its edges through the dependency service, so a fixture cannot
// smuggle in a self-loop, duplicate or cycle.
func seedWorkspace(store storage.Store, logger service.Logger, fixture seedFixture) error {
	for _, st := range fixture.Tasks {
		task, err := st.toTask(fixture.Workspace)
		if err != nil {
			return err
		}
		if err := store.SaveTask(task); err != nil {
			return errors.Wrapf(err, "failed to save task %s", st.ID)
		}
	}
	svc := service.NewDependencyService(store, logger)
	for _, sd := range fixture.Dependencies {
		_, err := svc.CreateDependency(fixture.Workspace, sd.Prerequisite, sd.Dependent, models.DependencyType(sd.Type))
		if err != nil {
			return errors.Wrapf(err, "failed to add dependency %s -> %s", sd.Prerequisite, sd.Dependent)
		}
	}
	return nil
}

func (st seedTask) toTask(workspaceID int64) (models.Task, error) {
	if st.ID == "" {
		return models.Task{}, errors.New("fixture task needs an 'id'")
	}
	task := models.Task{
		ID:          st.ID,
		WorkspaceID: workspaceID,
		Title:       st.Title,
		Completed:   st.Completed,
		Color:       st.Color,
		CreatedAt:   time.Now(),
	}
	if st.Start != "" {
		d, err := time.Parse(dateLayout, st.Start)
		if err != nil {
			return models.Task{}, errors.Wrapf(err, "task %s has an invalid start date", st.ID)
		}
		task.StartDate = &d
	}
	if st.End != "" {
		d, err := time.Parse(dateLayout, st.End)
		if err != nil {
			return models.Task{}, errors.Wrapf(err, "task %s has an invalid end date", st.ID)
		}
		task.EndDate = &d
	}
	return task, nil
}

// argMap parses positional key=value arguments.
func argMap(args []string) map[string]string {
	kv := make(map[string]string, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) == 2 {
			kv[parts[0]] = parts[1]
		}
	}
	return kv
}

func parseWorkspace(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Printf("Error parsing workspace as number: %q\n", raw)
		os.Exit(1)
	}
	return id
}

func dbFlag(cmd *cobra.Command) string {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	return dbConnStr
}

func initStore(dbConnStr string) *internal_storage.PostgresStore {
	store, err := internal_storage.InitStore(dbConnStr)
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
