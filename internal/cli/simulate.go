package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var simulateQuery string

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "对查询结果强制发送一次告警, 用于验证告警通道",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateQuery == "" {
			return errors.New("--query 不能为空")
		}
		return getApp().SimulateAlert(cmd.Context(), simulateQuery)
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateQuery, "query", "q", "", "产品查询")
}
