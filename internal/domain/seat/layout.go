package seat

// バスの設備ラベル
const (
	FixtureDriver       = "driver"
	FixtureRefrigerator = "refrigerator"
	FixtureToilet       = "toilet"
)

// DefaultCapacity は標準の座席数
const DefaultCapacity = 50

// Row は通路を挟んだ1列分の座席番号（存在しない位置は0）
type Row struct {
	Left  [2]int
	Right [2]int
}

// Layout は2-2配置の座席表を表す
type Layout struct {
	Capacity int
	Front    []string
	Rows     []Row
	Rear     []string
}

// NewLayout は座席数から2-2配置の座席表を作成する
//
// 左側の2列には奇数番号、右側の2列には偶数番号が並ぶ。
// 例: 1行目は左 1,3 / 右 2,4、2行目は左 5,7 / 右 6,8。
func NewLayout(capacity int) (*Layout, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	rowCount := (capacity + 3) / 4
	rows := make([]Row, 0, rowCount)
	for r := 0; r < rowCount; r++ {
		base := 4 * r
		rows = append(rows, Row{
			Left:  [2]int{seatOrZero(base+1, capacity), seatOrZero(base+3, capacity)},
			Right: [2]int{seatOrZero(base+2, capacity), seatOrZero(base+4, capacity)},
		})
	}
	return &Layout{
		Capacity: capacity,
		Front:    []string{FixtureDriver},
		Rows:     rows,
		Rear:     []string{FixtureRefrigerator, FixtureToilet},
	}, nil
}

// SideOf は座席番号が左右どちら側にあるかを返す
func SideOf(number int) string {
	if number%2 == 1 {
		return "left"
	}
	return "right"
}

func seatOrZero(number, capacity int) int {
	if number > capacity {
		return 0
	}
	return number
}
