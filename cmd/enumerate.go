// Copyright © 2016 Tobias Wellnitz, DH1TW <Tobias.Wellnitz@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/dh1tw/dspout/audio/sinks/scWriter"
	"github.com/dh1tw/dspout/config"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"
)

// enumerateCmd represents the enumerate command
var enumerateCmd = &cobra.Command{
	Use:   "enumerate",
	Short: "List all output backends, audio devices and supported Host APIs",
	Long:  `List all output backends, audio devices and supported Host APIs`,
	Run: func(cmd *cobra.Command, args []string) {
		hostAPI, _ := cmd.Flags().GetString("hostapi")
		enumerate(hostAPI)
	},
}

func init() {
	RootCmd.AddCommand(enumerateCmd)
	enumerateCmd.Flags().String("hostapi", "", "only list the output device names of this host API")
}

var tmpl = template.Must(template.New("").Parse(
	`
Available audio output devices and supported Host APIs:

	Detected {{. | len}} host API(s): {{range .}}
	
	Name:                   {{.Name}}
	{{if .DefaultOutputDevice}}Default output device:  {{.DefaultOutputDevice.Name}}{{end}}
	Devices: {{range .Devices}}{{if ge .MaxOutputChannels 2}}
		Name:                      {{.Name}}
		MaxOutputChannels:         {{.MaxOutputChannels}}
		DefaultLowOutputLatency:   {{.DefaultLowOutputLatency}}
		DefaultHighOutputLatency:  {{.DefaultHighOutputLatency}}
		DefaultSampleRate:         {{.DefaultSampleRate}}
	{{end}}{{end}}
{{end}}`,
))

// enumerate lists the output backends and all stereo capable audio
// output devices on the system
func enumerate(hostAPI string) {
	kinds := newRegistry(config.Settings{}).Kinds()
	fmt.Printf("\nAvailable output backends: %s\n", strings.Join(kinds, ", "))

	if err := portaudio.Initialize(); err != nil {
		fmt.Println(err)
		return
	}
	defer portaudio.Terminate()

	if hostAPI != "" {
		devices, err := scWriter.OutputDevices(hostAPI)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("\nOutput devices of %s:\n", hostAPI)
		for _, d := range devices {
			fmt.Printf("\t%s\n", d)
		}
		return
	}

	hs, err := portaudio.HostApis()
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := tmpl.Execute(os.Stdout, hs); err != nil {
		fmt.Println(err)
	}
}
