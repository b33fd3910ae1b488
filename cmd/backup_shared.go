package cmd

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// categoriesFromConfig reads a category id list, dropping non-positive and repeated ids.
func categoriesFromConfig(key string) []int {
	return normalizeCategories(viper.GetIntSlice(key))
}

func normalizeCategories(values []int) []int {
	result := lo.Uniq(lo.Filter(values, func(id int, _ int) bool { return id > 0 }))
	if len(result) == 0 {
		return nil
	}
	return result
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
