package obs

// Scene is one entry of the OBS scene list.
type Scene struct {
	Name  string `json:"sceneName"`
	UUID  string `json:"sceneUuid"`
	Index int    `json:"sceneIndex"`
}

func (c *Client) Scenes() ([]Scene, error) {
	var out struct {
		Scenes []Scene `json:"scenes"`
	}
	if err := c.Request("GetSceneList", nil, &out); err != nil {
		return nil, err
	}
	return out.Scenes, nil
}

func (c *Client) SetCurrentScene(sceneUUID string) error {
	return c.Request("SetCurrentProgramScene", map[string]string{"sceneUuid": sceneUUID}, nil)
}

func (c *Client) Profiles() ([]string, error) {
	var out struct {
		Profiles []string `json:"profiles"`
		Current  string   `json:"currentProfileName"`
	}
	if err := c.Request("GetProfileList", nil, &out); err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

func (c *Client) SetCurrentProfile(name string) error {
	return c.Request("SetCurrentProfile", map[string]string{"profileName": name}, nil)
}

func (c *Client) ToggleRecord() error      { return c.Request("ToggleRecord", nil, nil) }
func (c *Client) StartRecord() error       { return c.Request("StartRecord", nil, nil) }
func (c *Client) StopRecord() error        { return c.Request("StopRecord", nil, nil) }
func (c *Client) ToggleRecordPause() error { return c.Request("ToggleRecordPause", nil, nil) }
func (c *Client) PauseRecord() error       { return c.Request("PauseRecord", nil, nil) }
func (c *Client) ResumeRecord() error      { return c.Request("ResumeRecord", nil, nil) }

func (c *Client) ToggleStream() error { return c.Request("ToggleStream", nil, nil) }
func (c *Client) StartStream() error  { return c.Request("StartStream", nil, nil) }
func (c *Client) StopStream() error   { return c.Request("StopStream", nil, nil) }

func (c *Client) ToggleVirtualCam() error { return c.Request("ToggleVirtualCam", nil, nil) }
func (c *Client) StartVirtualCam() error  { return c.Request("StartVirtualCam", nil, nil) }
func (c *Client) StopVirtualCam() error   { return c.Request("StopVirtualCam", nil, nil) }
