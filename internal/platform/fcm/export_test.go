package fcm

// SetClientFactoryForTest swaps the lazy client factory so tests can
// observe initialization without the Firebase SDK.
func SetClientFactoryForTest(d *Dispatcher, f ClientFactory) {
	d.factory = f
}
