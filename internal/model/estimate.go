package model

import "time"

// DefaultEstimateTitle은 요청 본문에 title이 없을 때 사용하는 기본 제목.
const DefaultEstimateTitle = "AI 추천 견적"

// UnknownOwnerName은 소유자 레코드가 고아가 된 견적의 갤러리 표시용 대체 이름.
const UnknownOwnerName = "알 수 없음"

// Estimate는 사용자가 저장한 PC 견적을 나타낸다.
// Payload는 요청 본문 전체를 그대로 직렬화한 JSON 텍스트이며 내용은 해석하지 않는다.
// OwnerID는 생성 시 인증된 사용자로부터 정확히 한 번 설정되고 이후 불변이다.
type Estimate struct {
	ID         string
	OwnerID    string
	Title      string
	TotalPrice int
	Payload    string
	CreatedAt  time.Time
}

// GalleryEstimate는 갤러리 뷰를 위해 견적과 소유자 표시 이름을 결합한 레코드.
type GalleryEstimate struct {
	Estimate
	OwnerName string
}
