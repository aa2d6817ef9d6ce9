package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/S93RUM-06/ocr-pipeline/internal/api"
	"github.com/S93RUM-06/ocr-pipeline/internal/profile"
)

var (
	profileDocType string
	profileFrom    string
	profileFields  []string
)

// profileSummary is one row of `profiles list`.
type profileSummary struct {
	ID           string `json:"profile_id" yaml:"profile_id"`
	Name         string `json:"profile_name" yaml:"profile_name"`
	DocumentType string `json:"document_type" yaml:"document_type"`
	Fields       int    `json:"fields" yaml:"fields"`
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage field-set profiles",
	Long: `Profiles describe the fields a document type carries, with extraction
hints (data type, pattern, expected length) per field. Apply one to a build
with --profile. An empty profiles directory is seeded with built-in profiles.`,
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}
		profiles, err := store.List()
		if err != nil {
			return err
		}

		rows := make([]profileSummary, 0, len(profiles))
		for _, p := range profiles {
			rows = append(rows, profileSummary{
				ID:           p.ID,
				Name:         p.Name,
				DocumentType: p.DocumentType,
				Fields:       len(p.Fields),
			})
		}
		return api.Output(rows)
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}
		p, err := store.Get(args[0])
		if err != nil {
			return err
		}
		return api.Output(p)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}
		if _, err := store.Get(args[0]); err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		printMessage("Deleted profile %s", args[0])
		return nil
	},
}

var profilesNewCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Create a profile",
	Long: `Create a profile, either empty or as a copy of an existing one (--from).
Fields are given as name[:data_type[:required]].

Examples:
  roisampler profiles new "Utility bill" --type bill --field account_no --field amount:number:required
  roisampler profiles new "My e-invoice" --from tw_einvoice_v1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProfiles()
		if err != nil {
			return err
		}

		var p profile.Profile
		if profileFrom != "" {
			src, err := store.Get(profileFrom)
			if err != nil {
				return err
			}
			p = store.Clone(*src, args[0])
			if cmd.Flags().Changed("type") {
				p.DocumentType = profileDocType
			}
		} else {
			p = store.New(args[0], profileDocType)
		}

		for _, arg := range profileFields {
			f, err := parseFieldArg(arg)
			if err != nil {
				return err
			}
			p.Fields = append(p.Fields, f)
		}

		if errs := profile.Validate(p); len(errs) > 0 {
			return fmt.Errorf("invalid profile: %s", strings.Join(errs, "; "))
		}
		if err := store.Save(&p); err != nil {
			return err
		}
		return api.Output(p)
	},
}

// parseFieldArg parses name[:data_type[:required]].
func parseFieldArg(arg string) (profile.Field, error) {
	parts := strings.Split(arg, ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return profile.Field{}, fmt.Errorf("invalid field %q: want name[:data_type[:required]]", arg)
	}

	f := profile.Field{FieldName: strings.TrimSpace(parts[0]), DataType: "string"}
	if len(parts) > 1 && parts[1] != "" {
		f.DataType = parts[1]
	}
	if len(parts) > 2 {
		if parts[2] != "required" {
			return profile.Field{}, fmt.Errorf("invalid field %q: third part must be \"required\"", arg)
		}
		f.Required = true
	}
	return f, nil
}

func init() {
	profilesNewCmd.Flags().StringVar(&profileDocType, "type", profile.DefaultDocumentType, "document type")
	profilesNewCmd.Flags().StringVar(&profileFrom, "from", "", "copy fields from an existing profile")
	profilesNewCmd.Flags().StringArrayVar(&profileFields, "field", nil, "field as name[:data_type[:required]] (repeatable)")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	profilesCmd.AddCommand(profilesNewCmd)
}
