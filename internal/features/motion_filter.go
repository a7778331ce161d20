package features

// MotionFilter はマウスの移動値（dx, dy）を指数移動平均で滑らかにします
// スワイプ判定が単発の跳ねに反応しないようにするために使う
type MotionFilter struct {
	smoothingFactor float64 // 0.0-1.0の範囲。1.0に近いほど滑らかになりますが、遅延が大きくなります
	warmUpCount     int
	currentCount    int
	lastDX          float64
	lastDY          float64
}

// 新しいモーションフィルターを作成します
func NewMotionFilter(smoothingFactor float64, warmUpCount int) *MotionFilter {
	if smoothingFactor < 0 {
		smoothingFactor = 0
	}
	if smoothingFactor > 1 {
		smoothingFactor = 1
	}
	return &MotionFilter{
		smoothingFactor: smoothingFactor,
		warmUpCount:     warmUpCount,
	}
}

// raw dx, dy値にsmoothingを適用します
// ウォームアップ中は生の値をそのまま返します
func (mf *MotionFilter) Filter(dxRaw, dyRaw int32) (int32, int32) {
	if mf.currentCount < mf.warmUpCount {
		mf.currentCount++
		mf.lastDX = float64(dxRaw)
		mf.lastDY = float64(dyRaw)
		return dxRaw, dyRaw
	}

	f := mf.smoothingFactor
	mf.lastDX = float64(dxRaw)*(1.0-f) + mf.lastDX*f
	mf.lastDY = float64(dyRaw)*(1.0-f) + mf.lastDY*f

	return round(mf.lastDX), round(mf.lastDY)
}

// フィルターの状態をリセットします
func (mf *MotionFilter) Reset() {
	mf.lastDX = 0
	mf.lastDY = 0
	mf.currentCount = 0
}

func round(v float64) int32 {
	if v < 0 {
		return int32(v - 0.5)
	}
	return int32(v + 0.5)
}
