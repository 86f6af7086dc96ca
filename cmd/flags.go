package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// mustGet reads a flag registered in init(). A lookup error means the flag
// name or type is wrong in code, so it panics.
func mustGet[T any](cmd *cobra.Command, name string, get func(*pflag.FlagSet, string) (T, error)) T {
	val, err := get(cmd.Flags(), name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	return mustGet(cmd, name, (*pflag.FlagSet).GetBool)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	return mustGet(cmd, name, (*pflag.FlagSet).GetInt)
}

func mustGetInt64(cmd *cobra.Command, name string) int64 {
	return mustGet(cmd, name, (*pflag.FlagSet).GetInt64)
}

func mustGetString(cmd *cobra.Command, name string) string {
	return mustGet(cmd, name, (*pflag.FlagSet).GetString)
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	return mustGet(cmd, name, (*pflag.FlagSet).GetFloat64)
}
