package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	token := flag.String("token", "", "bearer token (or set LIFTLOG_TOKEN)")
	day := flag.String("day", "", "workout day to run (prompted if omitted)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-session", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *token == "" {
		*token = os.Getenv("LIFTLOG_TOKEN")
	}
	if *serverURL == "" || *token == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-session -server <URL> -token <token> [-day <name>]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	// Open the local write journal
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	journal, err := session.OpenJournal(filepath.Join(homeDir, ".liftlog-session"))
	if err != nil {
		log.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	ctx := context.Background()
	client := session.NewClient(*serverURL, *token)

	plan, err := client.FetchPlan(ctx)
	if err != nil {
		fail(err)
	}
	if len(plan.Days) == 0 {
		fmt.Fprintln(os.Stderr, "No workout plan configured. Create one first.")
		os.Exit(1)
	}

	in := bufio.NewReader(os.Stdin)

	workoutDay := plan.Day(*day)
	if workoutDay == nil {
		workoutDay = chooseDay(in, plan)
	}

	ctrl := session.NewController(client, journal, session.BellNotifier{Out: os.Stdout})
	if err := ctrl.Start(ctx, workoutDay.Name, workoutDay.Exercises); err != nil {
		fail(err)
	}
	fmt.Printf("\nStarted %s (%d exercises). Session %s\n",
		workoutDay.Name, len(workoutDay.Exercises), ctrl.SessionID())

	for i, exercise := range ctrl.Exercises() {
		runExercise(ctx, ctrl, in, i, exercise)
	}

	if !ctrl.AllCompleted() {
		fmt.Println("\nSome exercises were not logged; completing with what's done.")
	}

	summary, err := ctrl.CompleteWorkout(ctx)
	if err != nil {
		fail(err)
	}

	fmt.Println("\n=== Workout Complete ===")
	fmt.Printf("  Finished at:   %s\n", summary.CompletedAt.Local().Format("15:04:05"))
	fmt.Printf("  Total time:    %s\n", formatSeconds(*summary.TotalWorkoutSeconds))
	fmt.Printf("  Total rest:    %s\n", formatSeconds(*summary.TotalRestSeconds))

	if streak, err := client.FetchStreak(ctx); err == nil {
		fmt.Printf("  Streak:        %d day(s)\n", streak)
	}
}

func runExercise(ctx context.Context, ctrl *session.Controller, in *bufio.Reader, index int, exercise models.Exercise) {
	ctrl.SelectExercise(index)

	fmt.Printf("\n--- %s: %d sets of %d-%d reps, %ds rest ---\n",
		exercise.Name, exercise.Sets, exercise.MinReps, exercise.MaxReps, exercise.RestTime)

	weight := promptFloat(in, "Weight (kg)", 0)
	reps := ctrl.Reps(index)

	for set := 0; set < exercise.Sets; set++ {
		reps[set] = promptInt(in, fmt.Sprintf("Set %d reps", set+1), reps[set])
		ctrl.RecordSet(index, reps, weight)

		if set < exercise.Sets-1 {
			rest(ctrl, in)
		}
	}

	for {
		err := ctrl.FinalizeExercise(ctx, index)
		if err == nil {
			fmt.Printf("Logged %s.\n", exercise.Name)
			return
		}
		if errors.Is(err, session.ErrUnauthorized) {
			fail(err)
		}
		fmt.Printf("Failed to log %s: %v\n", exercise.Name, err)
		if !promptYes(in, "Retry?") {
			return
		}
	}
}

// rest runs one rest period. The countdown is cosmetic; pressing Enter early
// skips the rest and records only the wall-clock time actually spent.
func rest(ctrl *session.Controller, in *bufio.Reader) {
	ctrl.Timer.SetOnTick(func(remaining int) {
		fmt.Printf("\r  resting... %3ds ", remaining)
	})
	ctrl.StartRest()
	fmt.Println("  (press Enter to skip rest)")

	_, _ = in.ReadString('\n')
	ctrl.Timer.Skip()
	fmt.Println()
}

func chooseDay(in *bufio.Reader, plan *models.WorkoutPlan) *models.WorkoutDay {
	fmt.Println("Workout days:")
	for i, d := range plan.Days {
		fmt.Printf("  %d) %s (%d exercises)\n", i+1, d.Name, len(d.Exercises))
	}
	for {
		n := promptInt(in, "Which day", 1)
		if n >= 1 && n <= len(plan.Days) {
			return &plan.Days[n-1]
		}
		fmt.Println("Out of range.")
	}
}

func promptInt(in *bufio.Reader, label string, def int) int {
	fmt.Printf("%s [%d]: ", label, def)
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func promptFloat(in *bufio.Reader, label string, def float64) float64 {
	fmt.Printf("%s [%g]: ", label, def)
	line, _ := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	f, err := strconv.ParseFloat(line, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func promptYes(in *bufio.Reader, label string) bool {
	fmt.Printf("%s [y/N]: ", label)
	line, _ := in.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

func fail(err error) {
	if errors.Is(err, session.ErrUnauthorized) {
		fmt.Fprintln(os.Stderr, "Authentication failed: signed out. Check your token.")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
