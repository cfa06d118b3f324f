package form

// Fixed validation messages.
const (
	MsgRequired = "필수 입력입니다"
	MsgEmail    = "올바른 이메일 형식이 아닙니다"
	MsgPhone    = "올바른 전화번호 형식이 아닙니다"
	MsgNumber   = "숫자만 입력 가능합니다"
	MsgDate     = "올바른 날짜 형식이 아닙니다"
	MsgChoice   = "선택할 수 없는 값입니다"
)
