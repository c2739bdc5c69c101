package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/tlogg/internal/db"
	"github.com/dori/tlogg/internal/model"
	"github.com/dori/tlogg/internal/report"
	"github.com/dori/tlogg/internal/ui"
	"github.com/dori/tlogg/internal/ui/theme"
)

// lsDefaultDays is how far back `ls` looks without --from
const lsDefaultDays = 7

// addCmd books hours against a project
type addCmd struct {
	duration float64
	message  string
	project  *string // nil selects the project of the latest entry
}

func (c *addCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	entry, err := repo.AddEntry(s.ctx, c.duration, c.message, c.project)
	if err != nil {
		return err
	}

	s.logger.Debug("entry booked", "id", entry.ID, "duration", entry.DurationValue())

	if entry.IsLongDescription() {
		s.logger.Warn("message is longer than recommended",
			"length", len([]rune(entry.Description)),
			"recommended", model.RecommendedDescriptionLength)
	}

	s.printf("added entry %d: %s h on %s\n", entry.ID, report.FormatHours(entry.Duration), entry.Project)
	return nil
}

func newAddCmd(d *dispatcher) *cobra.Command {
	c := &addCmd{}
	var project string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a time log entry",
		Long: `Add a new time log entry to an existing project.

The project may be given by name. Without --project the entry is booked
on the project of the most recent entry.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("project") {
				c.project = &project
			}
			return d.dispatch(cmd, c)
		},
	}

	f := cmd.Flags()
	f.Float64VarP(&c.duration, "duration", "d", 0, "number of hours spent")
	f.StringVarP(&c.message, "message", "m", "", "what the time was spent on, preferably under 70 characters")
	f.StringVarP(&project, "project", "p", "", "project to book on (default: project of the latest entry)")
	_ = cmd.MarkFlagRequired("duration")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

// rmCmd removes a log entry by id
type rmCmd struct {
	id int64
}

func (c *rmCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	entry, err := repo.GetEntry(s.ctx, c.id)
	if err != nil {
		return err
	}
	if err := repo.RemoveEntry(s.ctx, c.id); err != nil {
		return err
	}

	s.printf("removed entry %d: %s h on %s (%s)\n", entry.ID, report.FormatHours(entry.Duration), entry.Project, entry.Description)
	return nil
}

func newRmCmd(d *dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a time log entry",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return newUsageError(fmt.Errorf("invalid entry id %q", args[0]))
			}
			return d.dispatch(cmd, &rmCmd{id: id})
		},
	}
}

// addProjectCmd creates a project
type addProjectCmd struct {
	name        string
	description string
}

func (c *addProjectCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	p, err := repo.AddProject(s.ctx, c.name, c.description)
	if err != nil {
		return err
	}

	s.printf("added project %s\n", p.Name)
	return nil
}

func newAddProjectCmd(d *dispatcher) *cobra.Command {
	c := &addProjectCmd{}

	cmd := &cobra.Command{
		Use:   "add-project",
		Short: "Add a new project to log hours on",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.dispatch(cmd, c)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&c.name, "name", "n", "", "name of the new project, short and unique")
	f.StringVar(&c.description, "description", "", "what the project is about")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// rmProjectCmd removes an unused project by name
type rmProjectCmd struct {
	name string
}

func (c *rmProjectCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	if err := repo.RemoveProject(s.ctx, c.name); err != nil {
		return err
	}

	s.printf("removed project %s\n", c.name)
	return nil
}

func newRmProjectCmd(d *dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-project NAME",
		Short: "Remove a project without log entries",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.dispatch(cmd, &rmProjectCmd{name: args[0]})
		},
	}
}

// printCmd exports entries since a date
type printCmd struct {
	format report.Format
	from   time.Time
}

func (c *printCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	entries, err := repo.ListEntries(s.ctx, c.from)
	if err != nil {
		return err
	}

	out, err := report.Render(c.format, entries)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(s.streams.Out, out)
	return err
}

func newPrintCmd(d *dispatcher) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:       "print FORMAT",
		Short:     "Export the logs as markdown or csv",
		Long:      "Export all entries created on or after --from.\n\nFORMAT is one of: " + joinNames(formatNames()) + ".",
		Args:      exactArgs(1),
		ValidArgs: formatNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(args[0])
			if err != nil {
				return newUsageError(err)
			}
			since, err := parseDate(from, time.Local)
			if err != nil {
				return newUsageError(err)
			}
			return d.dispatch(cmd, &printCmd{format: format, from: since})
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "first day to export, YYYY-MM-DD or RFC 3339")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

// lsCmd shows recent entries as a table
type lsCmd struct {
	from *time.Time // nil means lsDefaultDays ago
}

func (c *lsCmd) run(s *session) error {
	since := startOfDay(s.now().AddDate(0, 0, -lsDefaultDays))
	if c.from != nil {
		since = *c.from
	}

	repo, err := s.repo()
	if err != nil {
		return err
	}

	entries, err := repo.ListEntries(s.ctx, since)
	if err != nil {
		return err
	}

	th, err := sessionTheme(s)
	if err != nil {
		return err
	}

	s.printf("%s\n", entriesTable(th, entries))
	return nil
}

func newLsCmd(d *dispatcher) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List recent time log entries",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &lsCmd{}
			if cmd.Flags().Changed("from") {
				since, err := parseDate(from, time.Local)
				if err != nil {
					return newUsageError(err)
				}
				c.from = &since
			}
			return d.dispatch(cmd, c)
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "first day to list, YYYY-MM-DD or RFC 3339 (default: 7 days ago)")
	cmd.Flags().String("theme", "", "color theme for the table")

	return cmd
}

// projectsCmd lists projects with their booked hours
type projectsCmd struct {
	name string // show only this project when set
}

func (c *projectsCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	var projects []model.Project
	if c.name != "" {
		p, err := repo.GetProject(s.ctx, c.name)
		if err != nil {
			return err
		}
		projects = []model.Project{*p}
	} else if projects, err = repo.ListProjects(s.ctx); err != nil {
		return err
	}

	th, err := sessionTheme(s)
	if err != nil {
		return err
	}

	s.printf("%s\n", projectsTable(th, projects))
	return nil
}

func newProjectsCmd(d *dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects [NAME]",
		Short: "List projects, or show a single project",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &projectsCmd{}
			if len(args) == 1 {
				c.name = args[0]
			}
			return d.dispatch(cmd, c)
		},
	}
	cmd.Flags().String("theme", "", "color theme for the table")
	return cmd
}

// browseCmd runs the interactive entry browser
type browseCmd struct {
	from time.Time
}

func (c *browseCmd) run(s *session) error {
	th, err := sessionTheme(s)
	if err != nil {
		return err
	}

	repo, err := s.repo()
	if err != nil {
		return err
	}

	return ui.RunBrowse(s.ctx, repo, c.from, th, s.streams.In, s.streams.Out)
}

func newBrowseCmd(d *dispatcher) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and remove entries interactively",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &browseCmd{}
			if from != "" {
				since, err := parseDate(from, time.Local)
				if err != nil {
					return newUsageError(err)
				}
				c.from = since
			}
			return d.dispatch(cmd, c)
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "first day to show, YYYY-MM-DD or RFC 3339 (default: all)")
	cmd.Flags().String("theme", "", "color theme ("+joinNames(theme.Names())+")")

	return cmd
}

// infoCmd describes the dataset in use
type infoCmd struct{}

func (c *infoCmd) run(s *session) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}

	defaultProject := "(none, the log is empty)"
	last, err := repo.LastProject(s.ctx)
	switch {
	case err == nil:
		defaultProject = last.Name
	case !db.IsCode(err, db.NoDefaultProject):
		return err
	}

	configFile := s.cfg.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}

	s.printf("data dir:       %s\n", s.cfg.DataDir)
	s.printf("dataset:        %s\n", s.app.DB.Path())
	s.printf("lock file:      %s\n", s.cfg.LockPath())
	s.printf("config file:    %s\n", configFile)
	s.printf("schema version: %d\n", s.app.Version)
	s.printf("default project: %s\n", defaultProject)
	return nil
}

func newInfoCmd(d *dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where the dataset lives and its schema version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.dispatch(cmd, &infoCmd{})
		},
	}
}

// versionCmd prints the release version
type versionCmd struct{}

func (c *versionCmd) standalone() {}

func (c *versionCmd) run(s *session) error {
	s.printf("tlogg v%s\n", Version)
	return nil
}

func newVersionCmd(d *dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.dispatch(cmd, &versionCmd{})
		},
	}
}

// sessionTheme resolves the configured theme
func sessionTheme(s *session) (theme.Theme, error) {
	th, ok := theme.ByName(s.cfg.Theme)
	if !ok {
		return theme.Theme{}, newUsageError(fmt.Errorf("unknown theme %q (available: %s)", s.cfg.Theme, joinNames(theme.Names())))
	}
	return th, nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return newUsageError(fmt.Errorf("unexpected argument %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return newUsageError(fmt.Errorf("%q accepts at most %d arg(s), received %d", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return newUsageError(fmt.Errorf("%q accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args)))
		}
		return nil
	}
}
