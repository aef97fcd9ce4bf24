package caster

import (
	"context"
	"errors"
	"fmt"
	cast "github.com/AndreasAbdi/gochromecast"
	"github.com/AndreasAbdi/gochromecast/configs"
	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

const (
	DefaultSearchTimeout = time.Second * 10
	imageSendTimeout     = time.Second * 1
	appLaunchTimeout     = time.Second * 5
	castService          = "_googlecast._tcp"
	chromecastTestPort   = 32768
)

var (
	ErrNoDevice       = errors.New("no cast device selected")
	ErrDeviceNotFound = errors.New("cast device not found")
)

// Caster shows photos on a Chromecast. The device fetches the rendered
// photo from the HTTP server through Handler.
type Caster struct {
	secret   string
	port     int
	sender   api.Sender
	renderer *Renderer

	devices        map[string]*DeviceEntry
	selectedDevice string
	deviceMux      sync.Mutex

	current    *apitype.Photo
	currentMux sync.RWMutex

	api.Display
}

type DeviceEntry struct {
	name         string
	serviceEntry *mdns.ServiceEntry
	device       *cast.Device
	localAddr    net.IP
}

func NewCaster(secret string, port int, sender api.Sender, renderer *Renderer) *Caster {
	return &Caster{
		secret:   resolveSecret(secret),
		port:     port,
		sender:   sender,
		renderer: renderer,
		devices:  map[string]*DeviceEntry{},
	}
}

func resolveSecret(secret string) string {
	if secret != "" {
		return secret
	}
	return uuid.NewString()
}

// Secret is the first path segment the photo is served under.
func (s *Caster) Secret() string {
	return s.secret
}

// FindDevices searches cast devices for the given time and returns the
// names of the devices found.
func (s *Caster) FindDevices(ctx context.Context, timeout time.Duration) ([]string, error) {
	entriesCh := make(chan *mdns.ServiceEntry, 4)
	found := map[string]*DeviceEntry{}
	var names []string
	done := make(chan bool)
	go func() {
		defer close(done)
		for entry := range entriesCh {
			if !strings.Contains(entry.Name, castService) {
				continue
			}
			deviceName := resolveDeviceName(entry)
			logger.Debug.Printf("Found device: %s", deviceName)

			// The local address the Chromecast sees must be resolved before
			// connecting to it
			localAddr, err := resolveLocalAddress(entry)
			if err != nil {
				logger.Warn.Printf("Could not resolve local address for '%s': %s", deviceName, err)
				continue
			}
			if _, ok := found[deviceName]; !ok {
				names = append(names, deviceName)
			}
			found[deviceName] = &DeviceEntry{
				name:         deviceName,
				serviceEntry: entry,
				localAddr:    localAddr,
			}
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	params := mdns.DefaultParams(castService)
	params.Entries = entriesCh
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(queryCtx, params)
	close(entriesCh)
	<-done
	if err != nil {
		return nil, fmt.Errorf("could not search cast devices: %w", err)
	}

	s.deviceMux.Lock()
	s.devices = found
	s.deviceMux.Unlock()
	logger.Info.Printf("Found %d cast devices", len(names))
	return names, nil
}

// SelectDevice connects to the named device, or the first found when name
// is empty, and launches the media receiver on it.
func (s *Caster) SelectDevice(name string) error {
	s.deviceMux.Lock()
	defer s.deviceMux.Unlock()

	device, ok := s.devices[name]
	if name == "" {
		for _, entry := range s.devices {
			device, ok = entry, true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrDeviceNotFound, name)
	}

	logger.Info.Printf("Selected device '%s'", device.name)
	d, err := cast.NewDevice(device.serviceEntry.Addr, device.serviceEntry.Port)
	if err != nil {
		return fmt.Errorf("could not connect to '%s': %w", device.name, err)
	}
	device.device = &d
	appId := configs.MediaReceiverAppID
	device.device.ReceiverController.LaunchApplication(&appId, appLaunchTimeout, false)
	s.selectedDevice = device.name
	return nil
}

// Show makes the photo current and tells the device to fetch it.
func (s *Caster) Show(ctx context.Context, photo *apitype.Photo) error {
	s.setCurrent(photo)

	s.deviceMux.Lock()
	device, ok := s.devices[s.selectedDevice]
	s.deviceMux.Unlock()
	if !ok || device.device == nil {
		return ErrNoDevice
	}

	imageUrl := s.imageUrl(device.localAddr)
	logger.Debug.Printf("Casting image '%s'", imageUrl)
	if _, err := device.device.MediaController.Load(imageUrl, "image/jpeg", imageSendTimeout); err != nil {
		logger.Warn.Printf("Timed out while trying to cast image: %s", err)
	} else {
		logger.Debug.Printf("Casted %s", photo.Path())
	}
	return nil
}

// imageUrl changes on every call so that the device always reloads. The
// served photo is decided by the server, never by the path.
func (s *Caster) imageUrl(ip net.IP) string {
	return fmt.Sprintf("http://%s/%s/%s", net.JoinHostPort(ip.String(), strconv.Itoa(s.port)), s.secret, uuid.NewString())
}

func (s *Caster) Current() *apitype.Photo {
	s.currentMux.RLock()
	defer s.currentMux.RUnlock()
	return s.current
}

func (s *Caster) setCurrent(photo *apitype.Photo) {
	s.currentMux.Lock()
	defer s.currentMux.Unlock()
	s.current = photo
}

// Handler serves the current photo as JPEG.
func (s *Caster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo := s.Current()
		if photo == nil {
			http.Error(w, "no photo", http.StatusNotFound)
			return
		}

		logger.Debug.Printf("Sending '%s' to Chromecast", photo.Path())
		data, err := s.renderer.RenderJpeg(photo)
		if err != nil {
			logger.Error.Printf("Could not render '%s': %s", photo.Path(), err)
			http.Error(w, "could not render photo", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			logger.Error.Printf("Failed to write image: %s", err)
		}
	}
}

func (s *Caster) Close() error {
	s.deviceMux.Lock()
	defer s.deviceMux.Unlock()
	if device, ok := s.devices[s.selectedDevice]; ok && device.device != nil {
		logger.Info.Printf("Stop casting to '%s'", s.selectedDevice)
		device.device.QuitApplication(appLaunchTimeout)
	}
	s.selectedDevice = ""
	return nil
}

func resolveDeviceName(entry *mdns.ServiceEntry) string {
	for _, field := range entry.InfoFields {
		if strings.HasPrefix(field, "fn=") {
			return strings.TrimPrefix(field, "fn=")
		}
	}
	return entry.Host
}

func resolveLocalAddress(entry *mdns.ServiceEntry) (net.IP, error) {
	address := entry.AddrV4
	if address == nil {
		address = entry.AddrV6
	}
	if address == nil {
		address = entry.Addr
	}
	conn, err := net.Dial("udp", net.JoinHostPort(address.String(), strconv.Itoa(chromecastTestPort)))
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	addr := conn.LocalAddr().(*net.UDPAddr).IP
	logger.Debug.Printf("Resolved local address to '%s'", addr)
	return addr, nil
}
