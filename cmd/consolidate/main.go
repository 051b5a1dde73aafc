// Command consolidate 离线执行一次合并：读取模板与子公司、分公司报表，写出合并后的工作簿。
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/artificielle/consolidations/internal/service/excel"
)

var (
	opts    runOptions
	verbose bool
)

func main() {
	log := logrus.New()

	rootCmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Consolidate subsidiary and branch statements into a template",
		Long: `consolidate 按专题模板汇总分公司与子公司报表：
分公司汇总到合并分公司表，合并分公司表与子公司汇总到合并表。`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out, outcome, err := runConsolidate(opts, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写出 %s（%d 个单元格，%d 个步骤）\n", out, outcome.CellsWritten, outcome.StagesRun)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.topic, "topic", "", "专题：income、cashflow、balance 或中文名")
	flags.StringVar(&opts.template, "template", "", "模板文件路径（默认按命名约定在 --templates-dir 中查找）")
	flags.StringVar(&opts.templatesDir, "templates-dir", "xlsx-templates", "模板目录")
	flags.StringVar(&opts.yearPrefix, "year-prefix", excel.DefaultYearPrefix, "模板文件名年份前缀")
	flags.StringSliceVar(&opts.subsidiaries, "subsidiary", nil, "子公司报表，可重复")
	flags.StringSliceVar(&opts.branches, "branch", nil, "分公司报表，可重复")
	flags.StringVarP(&opts.output, "output", "o", "", "输出路径（默认 <专题名>.xlsx）")
	flags.BoolVar(&opts.atomic, "atomic", false, "合并失败时不写出任何结果")
	_ = rootCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(newTemplateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("合并失败")
		os.Exit(1)
	}
}

func newTemplateCmd() *cobra.Command {
	var topic, dir, yearPrefix string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank template for a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writeSkeleton(topic, dir, yearPrefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成模板 %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "专题：income、cashflow、balance 或中文名")
	cmd.Flags().StringVar(&dir, "dir", "xlsx-templates", "模板目录")
	cmd.Flags().StringVar(&yearPrefix, "year-prefix", excel.DefaultYearPrefix, "模板文件名年份前缀")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
