package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/records"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultHistoryLimit = 10
	defaultTopExercises = 5
	defaultPeriods      = 6
	defaultActivityDays = 7

	maxPeriods      = 120
	maxActivityDays = 366
)

// --- Tool definitions ---

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("List completed workouts, newest first. Each workout has its exercises with completed sets (weight, reps), duration in minutes, total sets and total volume (weight × reps)."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 10; 0 returns the whole history.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one completed workout by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id as returned by get_workout_history")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records: the best single set per exercise by volume (weight × reps), heaviest first."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial, case-insensitive match, e.g. 'bench')")),
)

var toolCheckPersonalRecord = mcp.NewTool("check_personal_record",
	mcp.WithDescription("Check whether a set would be a new personal record: heavier than the record weight, or the same weight with more volume."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Set weight")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Set repetitions")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Lifetime totals (workouts, sets, volume, duration), averages per workout, exercise frequency, muscle group distribution and the most frequent exercises."),
	mcp.WithNumber("top", mcp.Description("Number of most frequent exercises to list. Defaults to 5.")),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Current and longest runs of consecutive calendar days with at least one workout."),
)

var toolGetPeriodicAggregates = mcp.NewTool("get_periodic_aggregates",
	mcp.WithDescription("Workout count and volume per week or month for the most recent periods, oldest first. Periods without workouts are included with zeros."),
	mcp.WithString("granularity", mcp.Description("Period size. Defaults to 'month'."), mcp.Enum("week", "month")),
	mcp.WithNumber("count", mcp.Description("Number of periods ending with the current one. Defaults to 6.")),
)

var toolGetRecentActivity = mcp.NewTool("get_recent_activity",
	mcp.WithDescription("Workouts and volume per day for the last N days, today included, oldest first."),
	mcp.WithNumber("days", mcp.Description("Number of days. Defaults to 7.")),
)

var toolListPrograms = mcp.NewTool("list_programs",
	mcp.WithDescription("List the built-in workout programs with their exercises and target sets and reps."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}
	ws, err := h.ds.History(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(ws)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	w, err := h.ds.Workout(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(w)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prs, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if filter := strings.ToLower(req.GetString("exercise", "")); filter != "" {
		matched := make([]models.PersonalRecord, 0, len(prs))
		for _, pr := range prs {
			if strings.Contains(strings.ToLower(pr.ExerciseName), filter) {
				matched = append(matched, pr)
			}
		}
		prs = matched
	}
	return jsonResult(prs)
}

func (h *handlers) checkPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	if weight < 0 || reps < 0 {
		return mcp.NewToolResultError("weight and reps must not be negative"), nil
	}
	rc, err := h.ds.CheckPersonalRecord(ctx, exercise, weight, reps)
	if err != nil {
		h.log.Error("mcp check_personal_record", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(rc)
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	top := req.GetInt("top", defaultTopExercises)
	if top < 0 {
		return mcp.NewToolResultError("top must not be negative"), nil
	}
	sum, err := h.ds.Summary(ctx, top)
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sum)
}

func (h *handlers) getStreaks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := h.ds.Streaks(ctx)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(st)
}

func (h *handlers) getPeriodicAggregates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := records.ParseGranularity(req.GetString("granularity", string(records.Month)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count := req.GetInt("count", defaultPeriods)
	if count < 0 {
		return mcp.NewToolResultError("count must not be negative"), nil
	}
	periods, err := h.ds.Periodic(ctx, g, min(count, maxPeriods))
	if err != nil {
		h.log.Error("mcp get_periodic_aggregates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(periods)
}

func (h *handlers) getRecentActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", defaultActivityDays)
	if days < 0 {
		return mcp.NewToolResultError("days must not be negative"), nil
	}
	activity, err := h.ds.RecentActivity(ctx, min(days, maxActivityDays))
	if err != nil {
		h.log.Error("mcp get_recent_activity", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(activity)
}

func (h *handlers) listPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ps, err := h.ds.Programs(ctx)
	if err != nil {
		h.log.Error("mcp list_programs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(ps)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
