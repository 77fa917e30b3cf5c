package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyConfig        = "config"
	KeyMedicine      = "medicine"
	KeyMedicineID    = "medicineId"
	KeyMedicines     = "medicines"
	KeyQuery         = "query"
	KeyQuantity      = "quantity"
	KeyCartItems     = "cartItems"
	KeyCartIndex     = "cartIndex"
	KeyCartTotal     = "cartTotal"
	KeyReceiptID     = "receiptId"
	KeyBackupKind    = "backupKind"
	KeyBackupPath    = "backupPath"
	KeyDataFile      = "dataFile"
	KeyFilePath      = "filePath"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
)
