package terrain

// Observer receives notifications about terrain activity, typically to
// feed metrics. Implementations must be cheap; they run inline.
type Observer interface {
	ObserveMarch(res MarchResult)
	ObserveMapLoad(ok bool)
	ObservePointUpdate()
}

type nopObserver struct{}

func (nopObserver) ObserveMarch(MarchResult) {}
func (nopObserver) ObserveMapLoad(bool)      {}
func (nopObserver) ObservePointUpdate()      {}
