// -----------------------------------------------------------------------
// Last Modified: Thursday, 15th October 2026 10:41:08 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
)

// setupRoutes maps the JSON API onto the app's handlers
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	notFound := s.app.APIHandler.NotFoundHandler

	// Jobs: discovery and analytics runs, merged history
	jobs := s.app.JobHandler
	mux.HandleFunc("/api/jobs/discovery", jobs.StartDiscoveryHandler)
	mux.HandleFunc("/api/jobs/analytics", jobs.StartAnalyticsHandler)
	mux.HandleFunc("/api/jobs", jobs.ListHistoryHandler)
	mux.HandleFunc("/api/jobs/", singleSegment("/api/jobs/", methods{
		http.MethodGet:    jobs.GetJobHandler,
		http.MethodDelete: jobs.DeleteJobHandler,
	}, notFound))

	// Partnerships and their metrics refresh
	deals := s.app.PartnershipHandler
	mux.Handle("/api/partnerships", methods{
		http.MethodGet:  deals.ListHandler,
		http.MethodPost: deals.SaveHandler,
	})
	mux.Handle("/api/partnerships/refresh", methods{
		http.MethodGet:  deals.RefreshStateHandler,
		http.MethodPost: deals.RefreshHandler,
	})
	mux.HandleFunc("/api/partnerships/", singleSegment("/api/partnerships/", methods{
		http.MethodDelete: deals.DeleteHandler,
	}, notFound))

	// Attribution and insights
	insights := s.app.InsightsHandler
	mux.HandleFunc("/api/attribution", insights.AttributionHandler)
	mux.HandleFunc("/api/insights/compare", insights.CompareHandler)
	mux.HandleFunc("/api/insights/partnerships", insights.PartnershipInsightsHandler)
	mux.HandleFunc("/api/insights/", insights.CreatorInsightsHandler) // /{jobId}?cost=

	mux.HandleFunc("/api/session", s.app.SessionHandler.CurrentUserHandler)
	mux.HandleFunc("/api/session/login", s.app.SessionHandler.LoginHandler)
	mux.HandleFunc("/api/session/logout", s.app.SessionHandler.LogoutHandler)

	mux.Handle("/api/appstore/credentials", methods{
		http.MethodGet:  s.app.AppStoreHandler.GetCredentialsHandler,
		http.MethodPost: s.app.AppStoreHandler.SaveCredentialsHandler,
	})

	mux.HandleFunc("/api/scheduler", s.app.SchedulerHandler.StatusHandler)
	mux.HandleFunc("/api/scheduler/", s.app.SchedulerHandler.TriggerHandler) // POST /{name}/trigger

	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/config", s.app.APIHandler.ConfigHandler)

	mux.HandleFunc("/api/", notFound)

	return mux
}
