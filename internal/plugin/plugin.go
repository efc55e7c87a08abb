// Package plugin wires host runtime events into the OBS session.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/TilePad/tilepad-plugin-obs-studio/internal/action"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/host"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/obs"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/probe"
	"github.com/TilePad/tilepad-plugin-obs-studio/internal/session"
)

// PropertyStore persists plugin properties on the host side.
type PropertyStore interface {
	SetProperties(properties any) error
}

// Properties is the persisted plugin configuration.
type Properties struct {
	Auth *session.Auth `json:"auth,omitempty"`
}

// Plugin implements host.Handler for the OBS Studio plugin.
type Plugin struct {
	sess  *session.Session
	store PropertyStore
	probe bool

	mu        sync.Mutex
	inspector host.Sink
}

func New(sess *session.Session, store PropertyStore, probeHints bool) *Plugin {
	p := &Plugin{sess: sess, store: store, probe: probeHints}

	sess.SetPersist(func(auth session.Auth) {
		if store == nil {
			return
		}
		if err := store.SetProperties(Properties{Auth: &auth}); err != nil {
			log.Printf("failed to persist credentials: %v", err)
		}
	})

	return p
}

func (p *Plugin) OnProperties(properties []byte) {
	var props Properties
	if err := json.Unmarshal(properties, &props); err != nil {
		log.Printf("invalid plugin properties: %v", err)
		p.sess.Configure(nil)
		return
	}
	go p.configure(props.Auth)
}

func (p *Plugin) configure(auth *session.Auth) {
	p.sess.Configure(auth)
	p.connectHint()
}

// connectHint logs whether OBS looks like it is running after a failed
// connect, purely to make CONNECT_ERROR actionable in the logs.
func (p *Plugin) connectHint() {
	if p.probe && p.sess.State() == session.ConnectError {
		probe.LogHint()
	}
}

func (p *Plugin) OnInspectorOpen(ins host.Sink) {
	p.mu.Lock()
	p.inspector = ins
	p.mu.Unlock()

	p.sess.SetObserver(stateObserver{sink: ins})
}

func (p *Plugin) OnInspectorClose() {
	p.mu.Lock()
	p.inspector = nil
	p.mu.Unlock()

	p.sess.SetObserver(nil)
}

func (p *Plugin) OnInspectorMessage(ins host.Sink, message []byte) {
	var msg host.InspectorIn
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Type {
	case host.InGetClientState:
		_ = ins.Send(host.InspectorOut{Type: host.OutClientState, State: p.sess.State().String()})

	case host.InConnect:
		if msg.Auth == nil {
			return
		}
		go func(auth session.Auth) {
			p.sess.RequestReconnect(auth)
			p.connectHint()
		}(*msg.Auth)

	case host.InGetProfiles:
		go p.sendProfiles(ins)

	case host.InGetScenes:
		go p.sendScenes(ins)
	}
}

func (p *Plugin) OnTileClicked(actionID string, properties []byte) {
	act, err := action.Decode(actionID, properties)
	if err != nil {
		log.Printf("failed to decode %s tile action: %v", actionID, err)
		return
	}
	if act == nil {
		// Some other plugin's tile.
		return
	}
	go p.runTile(act)
}

func (p *Plugin) runTile(act action.Action) {
	var err error
	switch a := act.(type) {
	case *action.Recording:
		err = p.runRecording(a)
	case *action.Streaming:
		err = p.runStreaming(a)
	case *action.VirtualCamera:
		err = p.runVirtualCam(a)
	case *action.SwitchScene:
		err = p.runSwitchScene(a)
	case *action.SwitchProfile:
		err = p.runSwitchProfile(a)
	}
	if err != nil && !errors.Is(err, session.ErrNotConnected) {
		log.Printf("tile action failed: %v", err)
	}
}

func (p *Plugin) runRecording(a *action.Recording) error {
	if a.Action == "" {
		return nil
	}
	return p.withOBS(func(c *obs.Client) error {
		switch a.Action {
		case action.RecordStartStop:
			return c.ToggleRecord()
		case action.RecordStart:
			return c.StartRecord()
		case action.RecordStop:
			return c.StopRecord()
		case action.RecordPauseResume:
			return c.ToggleRecordPause()
		case action.RecordPause:
			return c.PauseRecord()
		case action.RecordResume:
			return c.ResumeRecord()
		}
		return nil
	})
}

func (p *Plugin) runStreaming(a *action.Streaming) error {
	if a.Action == "" {
		return nil
	}
	return p.withOBS(func(c *obs.Client) error {
		switch a.Action {
		case action.StreamStartStop:
			return c.ToggleStream()
		case action.StreamStart:
			return c.StartStream()
		case action.StreamStop:
			return c.StopStream()
		}
		return nil
	})
}

func (p *Plugin) runVirtualCam(a *action.VirtualCamera) error {
	if a.Action == "" {
		return nil
	}
	return p.withOBS(func(c *obs.Client) error {
		switch a.Action {
		case action.VirtualCamStartStop:
			return c.ToggleVirtualCam()
		case action.VirtualCamStart:
			return c.StartVirtualCam()
		case action.VirtualCamStop:
			return c.StopVirtualCam()
		}
		return nil
	})
}

func (p *Plugin) runSwitchScene(a *action.SwitchScene) error {
	if a.Scene == "" {
		return nil
	}
	if _, err := uuid.Parse(a.Scene); err != nil {
		// Stale tile configuration, nothing sensible to do.
		return nil
	}
	return p.withOBS(func(c *obs.Client) error {
		return c.SetCurrentScene(a.Scene)
	})
}

func (p *Plugin) runSwitchProfile(a *action.SwitchProfile) error {
	if a.Profile == "" {
		return nil
	}
	return p.withOBS(func(c *obs.Client) error {
		return c.SetCurrentProfile(a.Profile)
	})
}

func (p *Plugin) sendProfiles(ins host.Sink) {
	err := p.withOBS(func(c *obs.Client) error {
		profiles, err := c.Profiles()
		if err != nil {
			return err
		}
		options := make([]host.SelectOption, 0, len(profiles))
		for _, name := range profiles {
			options = append(options, host.SelectOption{Label: name, Value: name})
		}
		return ins.Send(host.InspectorOut{Type: host.OutProfiles, Profiles: options})
	})
	if err != nil && !errors.Is(err, session.ErrNotConnected) {
		log.Printf("failed to get profiles: %v", err)
	}
}

func (p *Plugin) sendScenes(ins host.Sink) {
	err := p.withOBS(func(c *obs.Client) error {
		scenes, err := c.Scenes()
		if err != nil {
			return err
		}
		options := make([]host.SelectOption, 0, len(scenes))
		for _, scene := range scenes {
			options = append(options, host.SelectOption{Label: scene.Name, Value: scene.UUID})
		}
		return ins.Send(host.InspectorOut{Type: host.OutScenes, Scenes: options})
	})
	if err != nil && !errors.Is(err, session.ErrNotConnected) {
		log.Printf("failed to get scenes: %v", err)
	}
}

// withOBS runs fn against the live OBS client through the session's
// exclusion boundary.
func (p *Plugin) withOBS(fn func(*obs.Client) error) error {
	return p.sess.Execute(func(conn session.Conn) error {
		client, ok := conn.(*obs.Client)
		if !ok {
			return fmt.Errorf("unexpected connection type %T", conn)
		}
		return fn(client)
	})
}

// stateObserver republishes lifecycle transitions to the inspector.
// Send failures are swallowed; the inspector may already be gone.
type stateObserver struct {
	sink host.Sink
}

func (o stateObserver) StateChanged(state session.State) {
	_ = o.sink.Send(host.InspectorOut{Type: host.OutClientState, State: state.String()})
}
