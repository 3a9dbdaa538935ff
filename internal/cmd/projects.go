package cmd

// ProjectsCmd manages projects
type ProjectsCmd struct {
	Del    ProjectsDelCmd    `cmd:"del" help:"Delete a project and everything it owns"`
	Import ProjectsImportCmd `cmd:"import" help:"Create a project from a YAML or JSON template"`
	List   ProjectsListCmd   `cmd:"list" help:"List projects" default:"1"`
	View   ProjectsViewCmd   `cmd:"view" help:"View a project and its statuses"`
}
