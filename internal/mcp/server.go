package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("fitlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("fitlog training routine server. A routine holds workouts, a workout holds exercises. "+
			"Workouts and exercises are addressed by 0-based index into the active list; restore tools take an index into the deleted list. "+
			"Call list_routines first to find a routine_id, then render_routine to see its current contents."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
		server.ServerTool{Tool: toolRenderRoutine, Handler: h.renderRoutine},
		server.ServerTool{Tool: toolAddExercise, Handler: h.addExercise},
		server.ServerTool{Tool: toolRemoveExercise, Handler: h.removeExercise},
		server.ServerTool{Tool: toolRestoreExercise, Handler: h.restoreExercise},
		server.ServerTool{Tool: toolUpdateReps, Handler: h.updateReps},
		server.ServerTool{Tool: toolReorderWorkouts, Handler: h.reorderWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRoutines, Handler: h.routines},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}
