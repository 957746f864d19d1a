package term

import "golang.org/x/sys/unix"

// fdAttributes reads and writes termios through ioctl on a file descriptor.
type fdAttributes struct {
	fd int
}

func (a fdAttributes) Get() (*unix.Termios, error) {
	return unix.IoctlGetTermios(a.fd, ioctlReadTermios)
}

func (a fdAttributes) Set(t *unix.Termios) error {
	return unix.IoctlSetTermios(a.fd, ioctlWriteTermios, t)
}
