// Package obs provides a minimal obs-websocket v5 client for switching the
// current program scene.
//
// Only the slice of the protocol fieldcast needs is implemented: the
// Hello/Identify handshake (op 0/1/2) with challenge/salt authentication,
// and the Request/RequestResponse pair (op 6/7) for SetCurrentProgramScene.
// Event subscriptions are disabled at Identify time.
//
// # Usage
//
//	client, err := obs.Connect(ctx, obs.Config{Host: "localhost", Port: 4455, Password: pw})
//	if err != nil {
//	    // errors.Is(err, obs.ErrAuthFailed) distinguishes a bad password
//	    return err
//	}
//	defer client.Close()
//
//	err = client.SwitchScene(ctx, "Field 1")
//
// Protocol reference:
// https://github.com/obsproject/obs-websocket/blob/master/docs/generated/protocol.md
package obs
