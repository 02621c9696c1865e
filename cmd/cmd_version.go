package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/modules/launchpad"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var versions = map[string]string{
	"":          version,
	"launchpad": launchpad.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show launchpad-engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "launchpad"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}
