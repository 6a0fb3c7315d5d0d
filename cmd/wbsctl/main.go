package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jengzang/wbs-backend-go/internal/api"
	"github.com/jengzang/wbs-backend-go/internal/config"
	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/middleware"
	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/planfile"
	"github.com/jengzang/wbs-backend-go/internal/reporter"
	"github.com/jengzang/wbs-backend-go/internal/service"
)

var (
	flagDB      string
	flagProject string
	flagRole    string
	flagSubject string
	flagFormat  string
	flagOutput  string
	flagWatch   bool
	flagJSON    bool
	flagNoColor bool
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wbsctl",
		Short: "Manage WBS projects from the command line",
		Long: `wbsctl works directly on the WBS database: it imports and exports plan
files, prints progress reports and mints API tokens.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default: DB_PATH or ./data/wbs/wbs.db)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openServices opens the database named by --db or the environment
func openServices() (api.Services, func(), error) {
	cfg := config.Load()
	if flagDB != "" {
		cfg.DBPath = flagDB
	}

	conn, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return api.Services{}, nil, err
	}
	return api.NewServices(conn), func() { conn.Close() }, nil
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			token, err := middleware.IssueToken(cfg.JWTSecret, flagSubject, flagRole, cfg.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagRole, "role", models.RoleUser, "Role: Admin, Reporter or User")
	cmd.Flags().StringVar(&flagSubject, "subject", "", "Token subject, e.g. a user name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a project from the bundled sample plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openServices()
			if err != nil {
				return err
			}
			defer closeDB()

			plan := planfile.Sample()
			p, err := svc.Projects.CreateWithTasks(plan.Project.Name, plan.Project.Owner, plan.Project.Executor, plan.Tasks)
			if err != nil {
				return err
			}
			fmt.Printf("%s Seeded %s as %s\n", green("✓"), bold(p.Name), cyan(p.ID))
			return nil
		},
	}
}

func projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openServices()
			if err != nil {
				return err
			}
			defer closeDB()

			projects, err := svc.Projects.List()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println(yellow("No projects."))
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%s  %s  %s\n", cyan(p.ID), bold(p.Name), p.Owner)
			}
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace a project's tasks with a YAML or JSON plan",
		Long: `Without --project a new project is created from the plan header.
With --watch the file is re-imported every time it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if flagWatch && flagProject == "" {
				return fmt.Errorf("--watch requires --project")
			}

			svc, closeDB, err := openServices()
			if err != nil {
				return err
			}
			defer closeDB()

			plan, err := planfile.Load(path)
			if err != nil {
				return err
			}

			if flagProject == "" {
				p, err := svc.Projects.CreateWithTasks(plan.Project.Name, plan.Project.Owner, plan.Project.Executor, plan.Tasks)
				if err != nil {
					return err
				}
				fmt.Printf("%s Created %s as %s with %d tasks\n", green("✓"), bold(p.Name), cyan(p.ID), len(plan.Tasks))
				return nil
			}

			if err := replace(svc.WBS, flagProject, plan); err != nil {
				return err
			}
			if !flagWatch {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching %s, press Ctrl+C to stop\n", cyan(path))
			return planfile.Watch(ctx, path, func(p *planfile.Plan) error {
				return replace(svc.WBS, flagProject, p)
			})
		},
	}
	cmd.Flags().StringVar(&flagProject, "project", "", "Target project ID")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "Re-import when the file changes")
	return cmd
}

func replace(wbsService *service.WBSService, projectID string, plan *planfile.Plan) error {
	tasks, err := wbsService.Replace(projectID, plan.Tasks)
	if err != nil {
		return err
	}
	fmt.Printf("%s Imported %d tasks into %s\n", green("✓"), len(tasks), cyan(projectID))
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project's plan as YAML or its S-curve as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openServices()
			if err != nil {
				return err
			}
			defer closeDB()

			out := os.Stdout
			if flagOutput != "" && flagFormat == "csv" {
				f, err := os.Create(flagOutput)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch flagFormat {
			case "csv":
				return svc.Reports.WriteSCurveCSV(flagProject, out)
			case "yaml":
				project, err := svc.Projects.Get(flagProject)
				if err != nil {
					return err
				}
				tasks, err := svc.WBS.List(flagProject)
				if err != nil {
					return err
				}
				plan := &planfile.Plan{
					Project: planfile.ProjectInfo{Name: project.Name, Owner: project.Owner, Executor: project.Executor},
					Tasks:   tasks,
				}
				if flagOutput != "" {
					return planfile.Write(flagOutput, plan)
				}
				data, err := planfile.Marshal(plan)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format %q (want yaml or csv)", flagFormat)
			}
		},
	}
	cmd.Flags().StringVar(&flagProject, "project", "", "Project ID")
	cmd.Flags().StringVar(&flagFormat, "format", "yaml", "Output format (yaml, csv)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write to file instead of stdout")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a project's progress report",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openServices()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := svc.Reports.Build(flagProject)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(report)
			}

			tasks, err := svc.WBS.List(flagProject)
			if err != nil {
				return err
			}
			reporter.New(report, tasks).Print(os.Stdout)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagProject, "project", "", "Project ID")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
