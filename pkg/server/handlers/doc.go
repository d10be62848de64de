// Package handlers implements the admin HTTP API endpoints.
//
// Each endpoint group is a handler struct wired with the components it
// needs: AccountsHandler drives the soft-delete lifecycle through the
// retention engine, ConfigsHandler and HistoryHandler read through the
// history service so tombstoned accounts stay invisible, and
// MaintenanceHandler triggers manual sweeps.
//
// Errors are returned as a JSON envelope:
//
//	{
//	  "error": {
//	    "message": "account \"...\" already deleted at 2026-08-01T00:00:00Z",
//	    "type": "conflict",
//	    "code": "already_deleted"
//	  }
//	}
//
// Lifecycle conflicts (already deleted, not deleted, recovery window
// expired) are 409s distinguished by code. Storage failures are 500s with
// a generic message; the detail goes to the log, not the client.
package handlers
