package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// GroupCreateOptions holds flags for `group create`.
type GroupCreateOptions struct {
	*RootOptions
	Title       string
	Slug        string
	Description string
}

// NewGroupCommand creates the group command and its subcommands.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups",
	}
	cmd.AddCommand(newGroupCreateCommand(rootOpts))
	return cmd
}

func newGroupCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GroupCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Long: `Create a group. Without --slug the slug is derived from the title.

Example:
  yatube group create --title "Cats and dogs" --description "Pets"`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := opts.group()
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := a.store.CreateGroup(cmd.Context(), group); err != nil {
				return err
			}
			cmd.Printf("created group %q (id %d)\n", group.Slug, group.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "group title (required)")
	cmd.Flags().StringVar(&opts.Slug, "slug", "", "URL slug, derived from the title when empty")
	cmd.Flags().StringVar(&opts.Description, "description", "", "group description")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// group builds and validates the group from the flags.
func (o *GroupCreateOptions) group() (*models.Group, error) {
	g := &models.Group{
		Title:       strings.TrimSpace(o.Title),
		Slug:        strings.TrimSpace(o.Slug),
		Description: strings.TrimSpace(o.Description),
	}
	if g.Title == "" {
		return nil, fmt.Errorf("--title must not be empty")
	}
	if g.Slug == "" {
		g.Slug = utils.Slugify(g.Title)
	}
	if !utils.ValidSlug(g.Slug) {
		return nil, fmt.Errorf("invalid slug %q: use letters, digits, underscores or hyphens", g.Slug)
	}
	return g, nil
}
