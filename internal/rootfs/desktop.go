package rootfs

import (
	"fmt"
	"os"
)

// dockItems are the launchers pinned to the plank dock for the live user.
var dockItems = []struct {
	name        string
	desktopFile string
}{
	{"terminal", "/usr/share/applications/nimbus-terminal.desktop"},
	{"files", "/usr/share/applications/nimbus-files.desktop"},
	{"browser", "/usr/share/applications/nimbus-browser.desktop"},
}

// WriteDesktop writes the login manager, greeter, window manager and
// application configuration for the live session.
func (c *Configurer) WriteDesktop() error {
	lightdm := fmt.Sprintf(`[Seat:*]
autologin-user=%s
autologin-user-timeout=0
user-session=openbox
greeter-session=lightdm-gtk-greeter
`, c.cfg.User.Name)

	greeter := fmt.Sprintf(`[greeter]
background=%s
theme-name=Adwaita
icon-theme-name=Adwaita
font-name=DejaVu Sans 10
`, c.cfg.WallpaperTarget())

	autostart := fmt.Sprintf(`picom &
feh --bg-fill %s &
plank &
nm-applet &
`, c.cfg.WallpaperTarget())

	menu := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<openbox_menu xmlns="http://openbox.org/3.4/menu">
  <menu id="root-menu" label="%s">
    <item label="Terminal">
      <action name="Execute"><command>xterm</command></action>
    </item>
    <item label="Files">
      <action name="Execute"><command>pcmanfm</command></action>
    </item>
    <item label="Web Browser">
      <action name="Execute"><command>firefox-esr</command></action>
    </item>
    <separator/>
    <item label="Reconfigure">
      <action name="Reconfigure"/>
    </item>
    <item label="Log Out">
      <action name="Exit"><prompt>yes</prompt></action>
    </item>
  </menu>
</openbox_menu>
`, c.cfg.Name)

	files := []struct {
		rel     string
		content string
		mode    os.FileMode
	}{
		{"etc/lightdm/lightdm.conf", lightdm, 0644},
		{"etc/lightdm/lightdm-gtk-greeter.conf", greeter, 0644},
		{"etc/xdg/openbox/autostart", autostart, 0755},
		{"etc/xdg/openbox/menu.xml", menu, 0644},
		{"usr/share/applications/nimbus-terminal.desktop", desktopEntry("Terminal", "xterm", "utilities-terminal"), 0644},
		{"usr/share/applications/nimbus-files.desktop", desktopEntry("Files", "pcmanfm", "system-file-manager"), 0644},
		{"usr/share/applications/nimbus-browser.desktop", desktopEntry("Web Browser", "firefox-esr", "web-browser"), 0644},
	}

	for _, f := range files {
		if err := c.write(f.rel, f.content, f.mode); err != nil {
			return err
		}
	}
	return nil
}

func desktopEntry(name, command, icon string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Icon=%s
Terminal=false
Categories=System;
`, name, command, icon)
}
