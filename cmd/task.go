package cmd

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aaelony/dx-fintools-fs/pkg/tasks"
)

const cacheName = ".fintools-cache"

var taskCmd = &cobra.Command{
	Use:   "task [task...]",
	Short: "Run tasks from the project's tasks.star file",
	Long: `This command parses the first tasks.star file found in the current directory
or one of its parents and executes the given tasks. Without arguments, the
available tasks are listed with their descriptions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskArgs := make([]string, 0)
		options := make(map[string]string)

		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}

		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}

		for _, part := range args {
			pos := strings.Index(part, "=")
			if pos > -1 {
				options[part[:pos]] = part[pos+1:]
			} else {
				taskArgs = append(taskArgs, part)
			}
		}

		logger := zerolog.New(NewConsoleWriter())
		ctx := tasks.WithLogger(cmd.Context(), &logger)

		// search the next tasks.star file
		wd, err := os.Getwd()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to retrieve the current working directory")
		}

		path := wd
		var taskPath string
		for {
			taskPath = filepath.Join(path, "tasks.star")
			_, err := os.Stat(taskPath)
			if err == nil {
				break
			}
			if !eris.Is(err, os.ErrNotExist) {
				logger.Fatal().Err(err).Msgf("Failed to check %s", taskPath)
			}

			parent := filepath.Dir(path)
			if parent == path {
				logger.Fatal().Msg("No tasks.star file found")
			}

			path = parent
		}

		projectRoot := filepath.Dir(taskPath)
		taskList := loadCached(taskPath, options, noCache)
		if taskList == nil {
			taskList, _, err = tasks.Load(ctx, taskPath, projectRoot, options, true)
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to parse tasks")
			}

			cachePath := filepath.Join(projectRoot, cacheName)
			if err := tasks.WriteCache(cachePath, options, taskList); err != nil {
				logger.Warn().Err(err).Msg("Failed to write the task cache")
			}
		}

		for _, name := range taskArgs {
			if _, ok := taskList[name]; !ok {
				logger.Fatal().Msgf("Task %s not found", name)
			}

			err = tasks.RunTask(ctx, projectRoot, name, taskList, dryRun, force)
			if err != nil {
				logger.Fatal().Err(err).Msgf("Failed task %s:", name)
			}
		}

		if len(taskArgs) == 0 {
			printTaskList(taskList)
		}

		return nil
	},
}

// loadCached returns the cached task list if it is still valid for the given
// option values, or nil if the script has to be parsed again.
func loadCached(taskPath string, options map[string]string, noCache bool) tasks.TaskList {
	if noCache {
		return nil
	}

	cachePath := filepath.Join(filepath.Dir(taskPath), cacheName)
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil
	}

	scriptInfo, err := os.Stat(taskPath)
	if err != nil || scriptInfo.ModTime().After(cacheInfo.ModTime()) {
		return nil
	}

	cachedOptions, cachedList, err := tasks.ReadCache(cachePath)
	if err != nil || !maps.Equal(cachedOptions, options) {
		return nil
	}

	return cachedList
}

func printTaskList(taskList tasks.TaskList) {
	fmt.Println("Available tasks:")

	maxNameLen := 0
	sortedNames := make([]string, 0, len(taskList))
	for _, task := range taskList {
		if len(task.Short) > maxNameLen {
			maxNameLen = len(task.Short)
		}

		sortedNames = append(sortedNames, task.Short)
	}

	sort.Strings(sortedNames)

	lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
	for _, name := range sortedNames {
		fmt.Printf(lineFmt, name+":", taskList[name].Desc)
	}
}

func init() {
	rootCmd.AddCommand(taskCmd)

	taskCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	taskCmd.Flags().BoolP("force", "f", false, "force run; always execute the passed tasks even if they're up to date")
	taskCmd.Flags().Bool("no-cache", false, "ignore the task cache and re-parse tasks.star")
}
