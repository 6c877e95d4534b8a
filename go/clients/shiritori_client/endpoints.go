package shiritori_client

const (
	// API Endpoints
	GamesEndpoint      = "/api/game/"
	GameEndpoint       = "/api/game/%s/"
	JoinEndpoint       = "/api/game/%s/join/"
	LeaveEndpoint      = "/api/game/%s/leave/"
	StartEndpoint      = "/api/game/%s/start/"
	RestartEndpoint    = "/api/game/%s/restart/"
	TurnEndpoint       = "/api/game/%s/turn/"
	CsrfCookieEndpoint = "/api/set-csrf-cookie/"

	// Cookies and headers
	CsrfCookieName    = "csrftoken"
	CsrfHeader        = "X-CSRFToken"
	SessionCookieName = "sessionid"
)
