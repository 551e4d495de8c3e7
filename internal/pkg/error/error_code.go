package error

const (
	// 0 ~ 999: 成功類別
	SUCCESS = 0 // 200 OK

	// 40000 ~ 49999: 用戶請求錯誤 (400 系列)
	BAD_REQUEST_BODY    = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS  = 40001 // 400 - 無效的請求參數
	BAD_REQUEST_HEADERS = 40002 // 400 - 無效的請求標頭

	// 40010 ~ 40099: 層級樹驗證錯誤（建立節點時逐項檢查）
	UNKNOWN_NODE_TYPE   = 40010 // 400 - 未知的節點型別
	MISSING_PARENT      = 40011 // 400 - 此型別必須指定父節點
	UNEXPECTED_PARENT   = 40012 // 400 - 根型別不可指定父節點
	INVALID_HIERARCHY   = 40013 // 400 - 父子型別不符層級規則
	CROSS_TENANT_PARENT = 40014 // 400 - 父節點屬於其他租戶

	// 40100 ~ 40399: 驗證與權限錯誤 (401 403 系列)
	UNAUTHORIZED = 40100 // 401 - 未授權
	FORBIDDEN    = 40301 // 403 - 禁止訪問

	// 40400 ~ 40499: 資源錯誤 (404 系列)
	NOT_FOUND        = 40400 // 404 - 資源未找到
	PARENT_NOT_FOUND = 40410 // 404 - 指定的父節點不存在

	// 40900 ~ 40999: 衝突 (409 系列)
	SYNC_ALREADY_RUNNING = 40900 // 409 - 該租戶已有同步執行中

	// 50000 ~ 50199: 伺服器內部錯誤 (500 系列)
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料庫錯誤
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停 (維護模式)

	// 50200 ~ 50499: 外部請求錯誤 (502 504 系列)
	EXTERNAL_REQUEST_ERROR         = 50200 // 502 - 外部系統請求錯誤
	EXTERNAL_RESPONSE_FORMAT_ERROR = 50201 // 502 - 外部系統回應格式錯誤
	GATEWAY_TIMEOUT                = 50400 // 504 - 外部系統超時
)
