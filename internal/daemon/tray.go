// +build windows

package daemon

import (
	"encoding/binary"
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon())
	systray.SetTitle("AB")
	systray.SetTooltip("Attendance Bot")

	// Add menu items
	mCheckNow := systray.AddMenuItem("Check Now", "Run attendance check immediately")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show last check result")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	// Start daemon logic in background
	go t.daemon.runLoop()

	// Handle menu item clicks
	go func() {
		for {
			select {
			case <-mCheckNow.ClickedCh:
				t.logger.Info("Check Now clicked from tray")
				go t.daemon.CheckNow()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	close(t.quit)
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray doesn't have built-in notification support
	// Just log for now
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
}

// showStatus shows the result of the last verification pass
func (t *TrayApp) showStatus() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	var message string
	if lastCheck, ok := status["last_check"].(map[string]interface{}); ok {
		message = fmt.Sprintf(
			"Date: %v\nShift: %v\nIn: %v\nOut: %v\nNext run: %v",
			lastCheck["target_date"],
			lastCheck["shift"],
			lastCheck["in"],
			lastCheck["out"],
			status["next_run"],
		)
		systray.SetTooltip(message)
	} else {
		message = fmt.Sprintf("No check has run yet\nNext run: %v", status["next_run"])
	}

	showMessageBox("Attendance Bot Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}

// trayIcon builds a solid 16x16 ICO so the tray entry has a visible
// marker without shipping an asset file.
func trayIcon() []byte {
	const size = 16

	// 32bpp BGRA pixel data, bottom-up
	pixels := make([]byte, size*size*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = 0x8C   // B
		pixels[i+1] = 0x5A // G
		pixels[i+2] = 0x1E // R
		pixels[i+3] = 0xFF // A
	}
	mask := make([]byte, size*size/8)

	// BITMAPINFOHEADER with doubled height for the AND mask
	header := make([]byte, 40)
	binary.LittleEndian.PutUint32(header[0:], 40)
	binary.LittleEndian.PutUint32(header[4:], size)
	binary.LittleEndian.PutUint32(header[8:], size*2)
	binary.LittleEndian.PutUint16(header[12:], 1)
	binary.LittleEndian.PutUint16(header[14:], 32)

	image := append(append(header, pixels...), mask...)

	// ICONDIR + single ICONDIRENTRY
	icon := make([]byte, 22)
	binary.LittleEndian.PutUint16(icon[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(icon[4:], 1) // count
	icon[6] = size
	icon[7] = size
	binary.LittleEndian.PutUint16(icon[12:], 32)
	binary.LittleEndian.PutUint32(icon[14:], uint32(len(image)))
	binary.LittleEndian.PutUint32(icon[18:], 22)

	return append(icon, image...)
}
