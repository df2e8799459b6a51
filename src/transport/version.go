package transport

// Version is the build version, set at link time:
//
//	-X github.com/Easy-Infra-Ltd/easy-content-gate/src/transport.Version=<tag>
var Version = "dev"
