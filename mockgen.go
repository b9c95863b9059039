package wfbtx

//go:generate sh -c "go run go.uber.org/mock/mockgen -package mocks -destination internal/mocks/link_sender.go github.com/ddritzenhoff/wfbtx LinkSender"
//go:generate sh -c "go run go.uber.org/mock/mockgen -package mocks -destination internal/mocks/datagram_source.go github.com/ddritzenhoff/wfbtx DatagramSource"
