package consts

const (
	AppName    = "gammapulse"
	AppVersion = "0.3.0"
	AppTagline = "Zero gamma briefings for index traders"
)
