/*
Package amidar maps the Amidar maze-chase snapshot onto a typed, mutation-tracked
entity graph and offers the intervention helpers used to edit it.

A Game is decoded from the engine snapshot at the start of a session. Every
setter marks the session dirty, so only sessions that changed something write
back. Immutable fields (the enemy list, the board's boxes and tiles, and each
enemy's movement AI) cannot be replaced after decoding; their contents are edited
in place instead, and an enemy's movement protocol is changed with SetProtocol.

	err := amidar.Run(ctx, manager, func(iv *amidar.Intervention) error {
	    if err := iv.SetLives(5); err != nil {
	        return err
	    }
	    return iv.RemoveEnemy(4)
	})
*/
package amidar
