package camstream

const (
	SCOPE_SESSION    = "session"
	SCOPE_INGEST     = "ingest"
	SCOPE_DELIVERY   = "delivery"
	SCOPE_HTTP       = "http_server"
	SCOPE_WS_HANDLER = "ws_handler"
	SCOPE_CAPTURE    = "capture"
	SCOPE_SNAPSHOT   = "snapshot"

	EVENT_SESSION_CONFIGURE   = "session_configure"
	EVENT_SESSION_START       = "session_start"
	EVENT_SESSION_STOP        = "session_stop"
	EVENT_SESSION_ERROR       = "session_error"
	EVENT_SESSION_CLEAR_ERROR = "session_clear_error"

	EVENT_HTTP_PREPARE     = "http_server_prepare"
	EVENT_HTTP_START       = "http_server_start"
	EVENT_HTTP_CORS_ENABLE = "http_server_cors_enable"
	EVENT_HTTP_STOP        = "http_server_stop"

	EVENT_DELIVERY_ATTACH = "delivery_attach"
	EVENT_DELIVERY_DETACH = "delivery_detach"

	EVENT_RATE_ADJUST = "rate_adjust"

	EVENT_WS_REQUEST  = "ws_request"
	EVENT_WS_UPGRADER = "ws_upgrader"

	EVENT_SNAPSHOT_SAVE = "snapshot_save"
)
