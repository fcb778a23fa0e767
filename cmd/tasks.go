package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "todo-list.com/todo-list/internal/errors"
	model "todo-list.com/todo-list/internal/models"
	"todo-list.com/todo-list/internal/services"
	"todo-list.com/todo-list/internal/validators"
)

var (
	listFilter string
	listSort   string
)

var addCmd = &cobra.Command{
	Use:   "add <title> <description>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, description := args[0], args[1]
		if err := validators.Validate(title, description); err != nil {
			return err
		}

		return withList(cmd, func(list *services.TaskList) error {
			task := model.NewTask(strings.TrimSpace(title), strings.TrimSpace(description))
			if err := list.AddTask(cmd.Context(), task); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID())
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withList(cmd, func(list *services.TaskList) error {
			filtered := list.GetFilteredTasks(services.Filter(listFilter))
			return printTasks(cmd.OutOrStdout(), list.GetSortedTasks(filtered, services.SortBy(listSort)))
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withList(cmd, func(list *services.TaskList) error {
			task, ok := list.GetTaskByID(args[0])
			if !ok {
				return apperrors.ErrTaskNotFound
			}
			printTask(cmd.OutOrStdout(), task)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <title> <description>",
	Short: "Change a task's title and description",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, title, description := args[0], args[1], args[2]

		return withList(cmd, func(list *services.TaskList) error {
			if _, ok := list.GetTaskByID(id); !ok {
				return apperrors.ErrTaskNotFound
			}
			if err := validators.Validate(title, description); err != nil {
				return err
			}
			return list.UpdateTask(cmd.Context(), id, strings.TrimSpace(title), strings.TrimSpace(description))
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a task between completed and in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withList(cmd, func(list *services.TaskList) error {
			return list.ToggleTaskCompleted(cmd.Context(), args[0])
		})
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withList(cmd, func(list *services.TaskList) error {
			return list.RemoveTask(cmd.Context(), args[0])
		})
	},
}

func withList(cmd *cobra.Command, fn func(list *services.TaskList) error) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.shutdown()

	list, err := a.openList(cmd.Context())
	if err != nil {
		return err
	}
	return fn(list)
}

func printTasks(w io.Writer, tasks []*model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tCREATED\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.Completed() {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\n", t.ID(), done, t.CreatedAt(), t.Title())
	}
	return tw.Flush()
}

func printTask(w io.Writer, t *model.Task) {
	fmt.Fprintln(w, t.Title())
	fmt.Fprintf(w, "ID: %s\n", t.ID())
	fmt.Fprintf(w, "Описание:\n%s\n", t.Description())
	fmt.Fprintf(w, "Дата создания: %s\n", t.CreatedAt())
	fmt.Fprintf(w, "Статус: %s\n", t.StatusText())
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", string(services.FilterAll), "completed, uncompleted or all")
	listCmd.Flags().StringVar(&listSort, "sort", "", "date (newest first) or name")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, editCmd, toggleCmd, removeCmd)
}
