package http

const (
	KEY_HEADER_CONTENT_TYPE        = "Content-Type"
	KEY_HEADER_CONTENT_DISPOSITION = "Content-Disposition"
	KEY_HEADER_REQUEST_ID          = "X-Request-Id"
	VALUE_HEADER_APPLICATION_JSON  = "application/json"
	VALUE_HEADER_TEXT_CSV          = "text/csv"
	VALUE_HEADER_XLSX              = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
